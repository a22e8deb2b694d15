package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/kodenova/bufmgr/internal/bufferpool"
	"github.com/kodenova/bufmgr/internal/storage"
	"github.com/kodenova/bufmgr/pkg/config"
)

func main() {
	workDir := flag.String("data-dir", "./data", "Working directory for storage segments")
	numFrames := flag.Int("frames", 0, "Buffer pool size in frames (0: use config default)")
	flag.Parse()

	if err := os.MkdirAll(*workDir, storage.FileMode0755); err != nil {
		log.Fatalf("failed to create data directory: %v", err)
	}

	cfg := config.Default()
	cfg.Storage.Workdir = *workDir
	if *numFrames > 0 {
		cfg.Buffer.NumFrames = *numFrames
	}

	sm := storage.NewStorageManager()
	fs := storage.LocalFileSet{Dir: cfg.Storage.Workdir, Base: "bpmctl"}
	file, err := storage.OpenFile(sm, fs, "bpmctl")
	if err != nil {
		log.Fatalf("failed to open file: %v", err)
	}

	bm := bufferpool.NewManager(cfg.Buffer.NumFrames)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("shutting down, flushing dirty frames...")
		if err := bm.Close(); err != nil {
			log.Printf("flush on shutdown failed: %v", err)
		}
		os.Exit(0)
	}()

	pageNo, page, err := bm.AllocPage(file)
	if err != nil {
		log.Fatalf("alloc_page failed: %v", err)
	}
	if _, err := page.InsertTuple([]byte("bpmctl smoke test")); err != nil {
		log.Fatalf("insert_tuple failed: %v", err)
	}
	if err := bm.UnpinPage(file, pageNo, true); err != nil {
		log.Fatalf("unpin_page failed: %v", err)
	}

	page, err = bm.ReadPage(file, pageNo)
	if err != nil {
		log.Fatalf("read_page failed: %v", err)
	}
	fmt.Printf("frames: %d\n", bm.PrintSelf(os.Stdout))
	if err := bm.UnpinPage(file, pageNo, false); err != nil {
		log.Fatalf("unpin_page failed: %v", err)
	}

	if err := bm.FlushFile(file); err != nil {
		log.Fatalf("flush_file failed: %v", err)
	}

	fmt.Printf("bpmctl ready, data directory: %s, pool size: %d frames\n", cfg.Storage.Workdir, bm.NumFrames())
}
