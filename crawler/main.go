package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/covidtrack/covid19-api/cache"
	"github.com/covidtrack/covid19-api/external/diseasesh"
	"github.com/covidtrack/covid19-api/external/jhu"
	"github.com/covidtrack/covid19-api/pipeline"
	"github.com/covidtrack/covid19-api/schema"
	"github.com/covidtrack/covid19-api/store"
)

// One-shot pipeline run, for external cron and manual operation. The
// server keeps serving whatever snapshot this run leaves behind.

const (
	logPrefix      = "cron"
	defaultTimeout = 15 * time.Second
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

	viper.SetDefault("mongo.conn", "mongodb://127.0.0.1:27017")
	viper.SetDefault("mongo.database", "covid-19")
	viper.SetDefault("sources.timeout", 30)
	viper.SetDefault("countries.file", "./country_list.json")
}

func main() {
	var configFile string

	flag.StringVar(&configFile, "c", "./config.yaml", "[optional] path of configuration file")
	flag.Parse()

	loadConfig(configFile)

	initLog()

	countries, err := schema.LoadCountryList(viper.GetString("countries.file"))
	if err != nil {
		log.Panic(err)
	}

	// initialise mongodb connections
	opts := options.Client().ApplyURI(viper.GetString("mongo.conn"))
	opts.SetMaxPoolSize(viper.GetUint64("mongo.pool"))
	mongoClient, err := mongo.NewClient(opts)
	if nil != err {
		log.Panicf("create mongo client with error: %s", err)
	}

	err = mongoClient.Connect(context.Background())
	if nil != err {
		log.Panicf("connect mongo database with error: %s", err)
	}

	mongoStore := store.NewMongoStore(
		mongoClient,
		viper.GetString("mongo.database"),
	)

	sourceTimeout := time.Duration(viper.GetInt("sources.timeout")) * time.Second
	httpClient := &http.Client{
		Timeout: sourceTimeout,
	}

	// nothing reads through this cache in a one-shot run; it only
	// absorbs the post-replace flush
	p := pipeline.New(
		[]pipeline.Source{
			pipeline.NewDailyReportSource(jhu.New(viper.GetString("sources.daily_report_url"), httpClient)),
			pipeline.NewFallbackSource(diseasesh.New(viper.GetString("sources.fallback_url"), httpClient)),
		},
		countries,
		mongoStore,
		cache.New(time.Minute),
		sourceTimeout,
	)

	if err := p.Run(context.Background()); err != nil {
		log.WithField("prefix", logPrefix).Errorf("pipeline run failed: %s", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	if mongoClient != nil {
		log.Info("Shutting down mongo store")
		_ = mongoClient.Disconnect(ctx)
	}
}
