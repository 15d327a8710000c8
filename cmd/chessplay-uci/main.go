package main

import (
	"flag"
	"log"
	"os"
	"runtime/pprof"

	"github.com/nobriot/schnecken-bot-sub001/internal/book"
	"github.com/nobriot/schnecken-bot-sub001/internal/engine"
	"github.com/nobriot/schnecken-bot-sub001/internal/uci"
)

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")

func main() {
	flag.Parse()

	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	eng := engine.New(true)
	loadBooks(eng)

	protocol := uci.New(eng)
	protocol.Run()
}

// loadBooks attaches the normal and provocative opening books from their
// default on-disk locations, if present. A missing book is not an error:
// the engine simply falls through to search from move one.
func loadBooks(eng *engine.Engine) {
	var normal, provocative *book.Book

	if dir, err := book.DefaultBookDir("normal"); err == nil {
		if b, err := book.LoadFromDir(dir); err == nil {
			normal = b
		}
	}
	if dir, err := book.DefaultBookDir("provocative"); err == nil {
		if b, err := book.LoadFromDir(dir); err == nil {
			provocative = b
		}
	}

	if normal != nil || provocative != nil {
		eng.SetBook(normal, provocative)
	}
}
