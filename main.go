package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/lintang-b-s/godb/lib/buffer"
	"github.com/lintang-b-s/godb/lib/concurrent"
	"github.com/lintang-b-s/godb/lib/config"
	"github.com/lintang-b-s/godb/lib/disk"
	"github.com/lintang-b-s/godb/lib/log"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Default()
	if len(os.Args) > 1 {
		var err error
		cfg, err = config.Load(os.Args[1])
		if err != nil {
			logrus.WithError(err).Fatal("load config")
		}
	}

	if err := os.MkdirAll(cfg.DBDir, 0755); err != nil {
		logrus.WithError(err).Fatal("create db dir")
	}

	dm, err := disk.NewFileDiskManager(cfg.DBPath(), cfg.PageSize)
	if err != nil {
		logrus.WithError(err).Fatal("open db file")
	}
	logDm, err := disk.NewFileDiskManager(cfg.LogPath(), cfg.PageSize)
	if err != nil {
		logrus.WithError(err).Fatal("open log file")
	}
	lm, err := log.NewLogManager(logDm)
	if err != nil {
		logrus.WithError(err).Fatal("create log manager")
	}

	bpm := buffer.NewBufferPoolManager(cfg.PoolSize, cfg.ReplacerK, dm, lm)

	faker := gofakeit.New(0)
	numPages := cfg.PoolSize * 8
	pageIDs := make([]disk.PageID, numPages)

	startTimer := time.Now()

	// tulis numPages page lewat basic guard (PageMut menandai dirty); pool bakal evict & write back
	// karena numPages > poolSize
	for i := 0; i < numPages; i++ {
		var pageID disk.PageID
		guard, err := bpm.NewPageGuarded(&pageID)
		if err != nil {
			logrus.WithError(err).Fatal("new page")
		}
		if _, err := guard.PageMut().PutString(0, faker.Sentence(8)); err != nil {
			logrus.WithError(err).Fatal("put string")
		}
		pageIDs[i] = pageID
		guard.Drop()
	}
	fmt.Printf("%v seconds for writing %d pages\n", time.Since(startTimer).Seconds(), numPages)

	// fetch balik semua page secara concurrent lewat read guard
	queue := concurrent.NewWorkerQueue(4)
	var wg sync.WaitGroup
	for _, pageID := range pageIDs {
		wg.Add(1)
		pageID := pageID
		queue <- func() {
			defer wg.Done()
			guard, err := bpm.FetchPageRead(pageID)
			if err != nil {
				logrus.WithError(err).WithField("pageID", pageID).Error("fetch page")
				return
			}
			_ = guard.Page().GetString(0)
			guard.Drop()
		}
	}
	wg.Wait()
	close(queue)

	bpm.FlushAllPages()
	if err := bpm.AuditPool(); err != nil {
		logrus.WithError(err).Fatal("pool audit")
	}

	fmt.Printf("%v seconds total, %d disk writes, %d disk reads\n",
		time.Since(startTimer).Seconds(), dm.NumWrites(), dm.NumReads())

	if err := dm.ShutDown(); err != nil {
		logrus.WithError(err).Error("close db file")
	}
	if err := logDm.ShutDown(); err != nil {
		logrus.WithError(err).Error("close log file")
	}
}
