package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/mustangstride/stride/core"
	"github.com/mustangstride/stride/core/study"
	logsvc "github.com/mustangstride/stride/services/logger"
	"github.com/mustangstride/stride/storage/keyval/sqlitekv"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	// set up the durable store
	dataDir := core.Conf.GetString("dataDir")
	errAndDie(os.MkdirAll(dataDir, 0o755))
	kv, err := sqlitekv.Open(filepath.Join(dataDir, "stride.db"))
	errAndDie(err)
	defer kv.Close()

	// hydrate before mutating
	store := study.NewStore()
	ctl := study.NewController(store, kv, logsvc.NewStdLogger(logger))
	ctl.Hydrate(context.Background())

	// start CLI
	cli := commandLine{
		svc: study.NewService(store, study.PlainVerifier{}, nil, logsvc.NewStdLogger(logger)),
		ctl: ctl,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		ctl.Flush()
		os.Exit(1)
	}
	ctl.Flush() // wait for write-backs before exiting
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
