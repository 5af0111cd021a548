package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/msto63/codasai/internal/viewer/rpc"
	"github.com/msto63/codasai/internal/viewer/server"
	"github.com/msto63/codasai/internal/viewer/session"
	coregrpc "github.com/msto63/codasai/pkg/core/grpc"
	"github.com/msto63/codasai/pkg/core/logging"
	"github.com/spf13/cobra"
)

var (
	serveHost string
	servePort int
	serveGRPC bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the preview server",
	Long: `Starts the preview server for the configured guide project.

Endpoints:
  GET /healthz                 health report
  GET /api/v1/guide            guide title and index
  GET /api/v1/tree             workspace outline
  GET /api/v1/file?path=       workspace file
  GET /api/v1/state?link=      parse a link
  GET /api/v1/history          recorded sessions and visits
  GET /ws                      live viewer session (websocket)

With --grpc the remote dispatch service is started as well.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (default from config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default from config)")
	serveCmd.Flags().BoolVar(&serveGRPC, "grpc", false, "also start the gRPC dispatch service")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := logging.New("serve")

	ws, err := openWorkspace(appConfig)
	if err != nil {
		return err
	}
	store, err := openHistory(appConfig)
	if err != nil {
		return err
	}
	defer store.Close()

	guide := loadGuide(appConfig, true)
	sessions := session.NewManagerWithConfig(ws, store, appConfig.Viewer.Prefix, nil, session.ManagerConfig{
		MaxSessions:  appConfig.Viewer.MaxSessions,
		IdleTimeout:  appConfig.Viewer.SessionIdleTimeout.Duration,
		RestoreLimit: appConfig.History.Limit,
	})
	defer sessions.Close()

	srvCfg := server.DefaultConfig()
	srvCfg.Host = appConfig.Server.Host
	srvCfg.Port = appConfig.Server.Port
	srvCfg.ReadTimeout = appConfig.Server.ReadTimeout.Duration
	srvCfg.WriteTimeout = appConfig.Server.WriteTimeout.Duration
	srvCfg.HistoryLimit = appConfig.History.Limit
	if serveHost != "" {
		srvCfg.Host = serveHost
	}
	if servePort != 0 {
		srvCfg.Port = servePort
	}

	srv := server.New(srvCfg, sessions, guide, store)
	if err := srv.StartAsync(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Preview server: http://%s\n", srv.Address())

	var grpcSrv *coregrpc.Server
	if serveGRPC || appConfig.GRPC.Enabled {
		grpcCfg := coregrpc.DefaultServerConfig()
		grpcCfg.Host = appConfig.GRPC.Host
		grpcCfg.Port = appConfig.GRPC.Port
		grpcCfg.EnableReflection = appConfig.GRPC.Reflection

		grpcSrv = coregrpc.NewServer(grpcCfg)
		rpc.RegisterViewerServer(grpcSrv.GRPCServer(), rpc.NewService(sessions))
		if err := grpcSrv.StartAsync(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Dispatch service: %s\n", grpcSrv.Address())
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if grpcSrv != nil {
		grpcSrv.StopWithTimeout(ctx)
	}
	if err := srv.Stop(ctx); err != nil {
		printError("preview server shutdown", err)
	}
	return nil
}
