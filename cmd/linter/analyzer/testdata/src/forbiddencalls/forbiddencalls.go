package forbiddencalls

import (
	"log"
	"os"

	zlog "github.com/rs/zerolog/log"
)

func Render() {
	panic("this is forbidden") // want "panic is forbidden"
}

func LoadHistory() {
	log.Fatal("this is forbidden") // want "log.Fatal is forbidden outside main function"
}

func Exit() {
	os.Exit(1) // want "os.Exit is forbidden outside main function"
}

func Zerolog() {
	zlog.Fatal()            // want "zerolog log.Fatal is forbidden outside main function"
	zlog.Panic()            // want "zerolog log.Panic is forbidden outside main function"
	zlog.Error()            // No want
	log.Println("allowed")  // No want
}

// main outside package main is an ordinary function.
func main() {
	os.Exit(0) // want "os.Exit is forbidden outside main function"
}
