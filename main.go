package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"

	"github.com/covidtrack/covid19-api/api"
	"github.com/covidtrack/covid19-api/background"
	"github.com/covidtrack/covid19-api/cache"
	"github.com/covidtrack/covid19-api/external/diseasesh"
	"github.com/covidtrack/covid19-api/external/jhu"
	"github.com/covidtrack/covid19-api/pipeline"
	"github.com/covidtrack/covid19-api/schema"
	"github.com/covidtrack/covid19-api/store"
)

var (
	server  *api.Server
	updater *background.Updater
)

func initLog() {
	logLevel, err := log.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(logLevel)
	}

	log.SetOutput(os.Stdout)

	log.SetFormatter(&prefixed.TextFormatter{
		ForceFormatting: true,
		FullTimestamp:   true,
	})
}

func loadConfig(file string) {
	// Config from file
	viper.SetConfigType("yaml")
	if file != "" {
		viper.SetConfigFile(file)
	}

	viper.AddConfigPath("/.config/")
	viper.AddConfigPath(".")
	err := viper.ReadInConfig()
	if err != nil {
		fmt.Println("No config file. Read config from env.")
		viper.AllowEmptyEnv(false)
	}

	// Config from env if possible
	viper.AutomaticEnv()
	viper.SetEnvPrefix("covid")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("server.port", "9000")
	viper.SetDefault("mongo.conn", "mongodb://127.0.0.1:27017")
	viper.SetDefault("mongo.database", "covid-19")
	viper.SetDefault("cache.ttl", 600)
	viper.SetDefault("cron.schedule", "0 0 2 * * *")
	viper.SetDefault("sources.timeout", 30)
	viper.SetDefault("countries.file", "./country_list.json")
}

func main() {
	var configFile string

	initialCtx, cancelInitialization := context.WithCancel(context.Background())

	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	var mongoClient *mongo.Client

	go func() {
		<-c
		log.Info("Server is preparing to shutdown")

		if initialCtx != nil && cancelInitialization != nil {
			log.Info("Cancelling initialization")
			cancelInitialization()
			<-initialCtx.Done()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if updater != nil {
			log.Info("Stopping scheduled updates")
			<-updater.Stop().Done()
		}

		if server != nil {
			log.Info("Shutdown api server")
			if err := server.Shutdown(ctx); err != nil {
				log.Error("Server Shutdown:", err)
			}
		}

		if mongoClient != nil {
			log.Info("Shutting down mongo store")
			_ = mongoClient.Disconnect(ctx)
		}

		os.Exit(1)
	}()

	flag.StringVar(&configFile, "c", "./config.yaml", "[optional] path of configuration file")
	flag.Parse()

	loadConfig(configFile)

	initLog()

	// Sentry
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              viper.GetString("sentry.dsn"),
		AttachStacktrace: true,
		Environment:      viper.GetString("sentry.environment"),
		Dist:             viper.GetString("sentry.dist"),
	}); err != nil {
		log.Error(err)
	}
	log.WithField("prefix", "init").Info("Initialized sentry")

	// Load static country reference list
	countries, err := schema.LoadCountryList(viper.GetString("countries.file"))
	if err != nil {
		log.Panic(err)
	}
	log.WithField("prefix", "init").Infof("Loaded country list with %d entries", len(countries))

	// initialise mongodb connections
	opts := options.Client().ApplyURI(viper.GetString("mongo.conn"))
	opts.SetMaxPoolSize(viper.GetUint64("mongo.pool"))
	mongoClient, err = mongo.NewClient(opts)
	if nil != err {
		log.Panicf("create mongo client with error: %s", err)
	}

	err = mongoClient.Connect(context.Background())
	if nil != err {
		log.Panicf("connect mongo database with error: %s", err)
	}

	mongoStore := store.NewMongoStore(mongoClient, viper.GetString("mongo.database"))

	responseCache := cache.New(time.Duration(viper.GetInt("cache.ttl")) * time.Second)

	sourceTimeout := time.Duration(viper.GetInt("sources.timeout")) * time.Second
	httpClient := &http.Client{
		Timeout: sourceTimeout,
	}

	p := pipeline.New(
		[]pipeline.Source{
			pipeline.NewDailyReportSource(jhu.New(viper.GetString("sources.daily_report_url"), httpClient)),
			pipeline.NewFallbackSource(diseasesh.New(viper.GetString("sources.fallback_url"), httpClient)),
		},
		countries,
		mongoStore,
		responseCache,
		sourceTimeout,
	)

	updater, err = background.NewUpdater(viper.GetString("cron.schedule"), p)
	if err != nil {
		log.Panicf("register update schedule with error: %s", err)
	}
	updater.Start()

	// populate the store shortly after startup; a failure only logs,
	// the schedule will retry
	go func() {
		time.Sleep(5 * time.Second)
		log.WithField("prefix", "init").Info("Performing initial data fetch")
		if err := p.Run(context.Background()); err != nil && err != pipeline.ErrUpdateInProgress {
			log.WithField("prefix", "init").Warnf("initial data fetch failed: %s", err)
		}
	}()

	// Init http server
	server = api.NewServer(mongoStore, responseCache, p)
	log.WithField("prefix", "init").Info("Initialized http server")

	// Remove initial context
	initialCtx = nil
	cancelInitialization = nil

	log.Fatal(server.Run(":" + viper.GetString("server.port")))
}
