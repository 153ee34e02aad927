package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/jmurray2011/leaf/internal/server"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve log pages over HTTP",
	Long: `Start a JSON API over the log directory.

Endpoints:
  GET /healthz
  GET /api/files?dir=&match=                    files, newest entry of each
  GET /api/logs/<file>?offset=&lines=&keyword=  one page
  GET /api/tail/<file>?offset=                  entries written after offset

Paths are relative to the log directory and cannot leave it. A file that
cannot be read returns an empty page.

Examples:
  leaf serve
  leaf serve --addr :8089 --dir /var/www/app/storage/logs`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default from config, 127.0.0.1:8089)")
	serveCmd.Flags().String("dir", "", "Log directory (default from config, ./storage/logs)")
	_ = viper.BindPFlag("addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("log_dir", serveCmd.Flags().Lookup("dir"))
}

func runServe(cmd *cobra.Command, args []string) error {
	app := GetApp(cmd)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Config{
		Addr:       viper.GetString("addr"),
		Dir:        viper.GetString("log_dir"),
		AppRoot:    viper.GetString("app_root"),
		Lines:      viper.GetInt("lines"),
		BufferSize: viper.GetInt("buffer_size"),
		MaxPages:   viper.GetInt("max_pages"),
	}, app.Log)

	return srv.Start(ctx)
}
