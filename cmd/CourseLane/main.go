// Package main is the entry point of the CourseLane service.
// It initializes the Kratos application with gRPC and HTTP servers and the pending expiry job.
package main

import (
	"flag"
	"os"

	"CourseLane/internal/conf"
	zapLogger "CourseLane/pkg/log"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/grpc"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/joho/godotenv"

	_ "go.uber.org/automaxprocs"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name is the name of the compiled software.
	Name = "courselane"
	// Version is the version of the compiled software.
	Version string
	// flagconf is the config flag.
	flagconf string

	id, _ = os.Hostname()
)

func init() {
	flag.StringVar(&flagconf, "conf", "../../configs/config.yaml", "config path, eg: -conf config.yaml")
}

func newApp(logger log.Logger, gs *grpc.Server, hs *http.Server, expiry *ExpiryCron) *kratos.App {
	return kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(logger),
		kratos.Server(
			gs,
			hs,
			expiry,
		),
	)
}

func main() {
	flag.Parse()

	// .env is optional; real environment variables win
	_ = godotenv.Load()

	bc, err := conf.NewBootstrap(flagconf)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zapLog, err := zapLogger.NewZapLogger(bc.Log)
	if err != nil {
		log.Fatalf("failed to initialize zap logger: %v", err)
	}
	defer func() { _ = zapLog.Sync() }()

	logger := log.With(zapLogger.NewKratosAdapter(zapLog),
		"service.id", id,
		"service.name", Name,
		"service.version", Version,
	)

	zapLogger.NewLogHelper(logger).Startup("CourseLane service starting",
		"http.addr", bc.Server.Http.Addr,
		"grpc.addr", bc.Server.Grpc.Addr,
		"log.level", bc.Log.Level,
		"log.format", bc.Log.Format,
		"log.env", bc.Log.Env,
		"enrollment.fail_open", bc.Enrollment.FailOpen,
		"breaker.shared", bc.Breaker.Shared,
	)

	app, cleanup, err := wireApp(
		bc.Server,
		bc.Data,
		bc.Auth,
		bc.Enrollment,
		bc.Breaker,
		bc.Quota,
		bc.RateLimit,
		bc.Notify,
		logger,
	)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	// start and wait for stop signal
	if err := app.Run(); err != nil {
		panic(err)
	}
}
