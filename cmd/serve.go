package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"

	"github.com/abhisek/quizmentor/internal/httpapi"
	"github.com/abhisek/quizmentor/internal/notify"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP webhook bridge",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		useLambda, _ := cmd.Flags().GetBool("lambda")
		rt, err := buildRuntime(ctx, notify.LogNotifier{Log: log})
		if err != nil {
			return err
		}
		defer rt.Close()
		if useLambda && !rt.sharedSessions {
			return fmt.Errorf("--lambda needs a sqlite, postgres or mysql store so sessions survive across instances (driver %q keeps them in memory)", cfg.Store.Driver)
		}

		h := httpapi.New(httpapi.Options{
			Engine:    rt.engine,
			Outbox:    rt.outbox,
			Log:       log,
			JWTSecret: cfg.JWTSecret,
		})
		if cfg.JWTSecret == "" {
			log.Warn("QUIZMENTOR_JWT_SECRET is empty, the bridge accepts unauthenticated requests")
		}

		if useLambda {
			log.Info("starting lambda handler")
			lambda.StartWithOptions(httpapi.LambdaHandler(h), lambda.WithContext(ctx))
			return nil
		}

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.HTTPAddr
		}
		return serveHTTP(ctx, addr, h, cfg.ShutdownTimeout)
	},
}

func serveHTTP(ctx context.Context, addr string, h http.Handler, grace time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides QUIZMENTOR_HTTP_ADDR)")
	serveCmd.Flags().Bool("lambda", false, "Run as an AWS Lambda handler behind API Gateway")
}
