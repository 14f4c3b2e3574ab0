package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"folio/internal/app"
	"folio/internal/gateway"
	"folio/internal/tools"
)

var (
	toolsMode string
	toolsHost string
	toolsPort int

	gatewayHost string
	gatewayPort int
)

// toolsCmd serves the portfolio tools over MCP streamable HTTP.
var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Run the portfolio MCP tool server",
	Long: `Starts an MCP server over streamable HTTP exposing the portfolio as tools.

In read mode the server answers questions about projects, technologies and
statistics. Manage mode adds create, update and delete tools.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		cfg := appInstance.Config

		mode := tools.Mode(cfg.MCP.Mode)
		if cmd.Flags().Changed("mode") {
			mode = tools.Mode(toolsMode)
		}
		srv, err := appInstance.ToolServer(mode)
		if err != nil {
			return err
		}

		host, port := cfg.MCP.Host, cfg.MCP.Port
		if cmd.Flags().Changed("host") {
			host = toolsHost
		}
		if cmd.Flags().Changed("port") {
			port = toolsPort
		}

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		log.WithField("mode", mode).Infof("Serving portfolio tools at %s", cfg.MCP.Path)
		return app.Serve(ctx, "tool server", listenAddr(host, port), srv.Handler(cfg.MCP.Path))
	},
}

// gatewayCmd serves the chat gateway.
var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Run the AG-UI chat gateway",
	Long: `Starts the SSE chat gateway used by the portfolio chat widget.

The gateway answers with a tool-calling agent connected to the portfolio
tool server. When the agent cannot be initialised the gateway still starts,
reports agent_ready=false on /health and answers chats with a run error.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		cfg := appInstance.Config

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		// A nil *agent.Agent must not reach the handler as a non-nil interface.
		var answerer gateway.Answerer
		if err := appInstance.InitAgent(ctx); err != nil {
			log.Errorf("Agent unavailable: %v", err)
		} else {
			answerer = appInstance.Agent
		}

		handler := gateway.NewHandler(answerer, appInstance.CostTracker, gateway.Options{
			ChunkSize:   cfg.Gateway.ChunkSize,
			ChunkDelay:  cfg.Gateway.ChunkDelay,
			CORSOrigins: cfg.Gateway.CORSOrigins,
		})

		host, port := cfg.Gateway.Host, cfg.Gateway.Port
		if cmd.Flags().Changed("host") {
			host = gatewayHost
		}
		if cmd.Flags().Changed("port") {
			port = gatewayPort
		}
		return app.Serve(ctx, "chat gateway", listenAddr(host, port), handler.Router())
	},
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func listenAddr(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

func init() {
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(gatewayCmd)

	toolsCmd.Flags().StringVar(&toolsMode, "mode", "read", fmt.Sprintf("Tool surface to expose (%s, %s)", tools.ModeRead, tools.ModeManage))
	toolsCmd.Flags().StringVar(&toolsHost, "host", "0.0.0.0", "Address to listen on")
	toolsCmd.Flags().IntVar(&toolsPort, "port", 8017, "Port to listen on")

	gatewayCmd.Flags().StringVar(&gatewayHost, "host", "0.0.0.0", "Address to listen on")
	gatewayCmd.Flags().IntVar(&gatewayPort, "port", 8025, "Port to listen on")
}
