package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	echoapi "github.com/mustangstride/stride/apps/api/echo"
	"github.com/mustangstride/stride/core"
	"github.com/mustangstride/stride/core/study"
	emailsvc "github.com/mustangstride/stride/services/email"
	insightsvc "github.com/mustangstride/stride/services/insight"
	logsvc "github.com/mustangstride/stride/services/logger"
	"github.com/mustangstride/stride/storage/keyval/memkv"
	"github.com/mustangstride/stride/storage/keyval/sqlitekv"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lshortfile)

	// set up services
	var logger core.Logger
	if core.Conf.GetBool("debug") {
		logger = logsvc.NewStdLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std)
	}

	var mailSvc core.EmailService
	if core.Conf.GetBool("debug") {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	// set up the durable store; an empty dataDir keeps state in memory only
	var kv core.KeyValueStore
	if dataDir := core.Conf.GetString("dataDir"); dataDir != "" {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			std.Fatal(err)
		}
		var err error
		if kv, err = sqlitekv.Open(filepath.Join(dataDir, "stride.db")); err != nil {
			std.Fatal(err)
		}
	} else {
		kv = memkv.Open()
	}
	defer kv.Close()

	// hydrate the store before anything renders or mutates
	store := study.NewStore()
	ctl := study.NewController(store, kv, logger)
	ctl.Hydrate(context.Background())
	defer ctl.Flush()

	studySvc := study.NewService(store, study.PlainVerifier{}, mailSvc, logger)

	// start API server
	app := echoapi.NewServer(&echoapi.Options{
		Address:    core.Conf.GetString("serverAddress"),
		StudySvc:   studySvc,
		InsightSvc: insightsvc.NewDummyService(),
		Logger:     logger,
	})
	app.Start()
}
