// Command touchcored runs the touch-core pipeline: it loads a YAML
// configuration, dials every configured sensor, and streams confirmed
// touches as TUIO 1.1 over UDP until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"

	"github.com/lumentouch/touchcore/internal/touch/l1scan"
	"github.com/lumentouch/touchcore/internal/touch/pipeline"
	"github.com/lumentouch/touchcore/internal/touch/remote"
	"github.com/lumentouch/touchcore/internal/touchconfig"
	"github.com/lumentouch/touchcore/internal/touchstore"
)

var (
	configPath = flag.String("config", "touch.yaml", "path to the pipeline configuration file")
	dbFile     = flag.String("db", "touch.db", "path to the SQLite persistence database")
	listen     = flag.String("listen", ":8090", "HTTP health-check listen address")
	grpcListen = flag.String("grpc-listen", ":8091", "gRPC remote-status listen address")
	noStore    = flag.Bool("no-store", false, "disable SQLite persistence (background snapshots and event history)")
)

func main() {
	flag.Parse()

	runID := uuid.New().String()
	log.Printf("touchcored: starting run %s", runID)

	cfg, err := touchconfig.Load(*configPath)
	if err != nil {
		log.Fatalf("touchcored: load config: %v", err)
	}

	var store *touchstore.DB
	if !*noStore {
		store, err = touchstore.Open(*dbFile)
		if err != nil {
			log.Fatalf("touchcored: open store: %v", err)
		}
		defer store.Close()
	}

	scanners := make(map[string]l1scan.Scanner, len(cfg.Sensors))
	for _, sensorCfg := range cfg.Sensors {
		scanner, err := dialScanner(sensorCfg)
		if err != nil {
			log.Fatalf("touchcored: %v", err)
		}
		scanners[sensorCfg.ID] = scanner
	}

	p, err := pipeline.New(cfg, scanners, store)
	if err != nil {
		log.Fatalf("touchcored: build pipeline: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		p.Run(ctx)
		log.Print("touchcored: pipeline stopped")
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		runGRPCServer(ctx, *grpcListen, p)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		runHealthServer(ctx, *listen, runID)
	}()

	wg.Wait()
	log.Print("touchcored: shutdown complete")
}

func runGRPCServer(ctx context.Context, addr string, p *pipeline.Pipeline) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		log.Printf("touchcored: grpc listen %s: %v", addr, err)
		return
	}

	server := grpc.NewServer()
	remote.RegisterPipelineStatusServer(server, remote.NewServer(remote.AdaptStats(p.Stats()), p.Events()))

	go func() {
		log.Printf("touchcored: grpc status server on %s", addr)
		if err := server.Serve(lis); err != nil {
			log.Printf("touchcored: grpc server error: %v", err)
		}
	}()

	<-ctx.Done()
	server.GracefulStop()
}

func runHealthServer(ctx context.Context, addr, runID string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","service":"touchcored","run_id":%q,"time":%q}`,
			runID, time.Now().UTC().Format(time.RFC3339))
	})

	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		log.Printf("touchcored: health server on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("touchcored: health server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		_ = server.Close()
	}
}
