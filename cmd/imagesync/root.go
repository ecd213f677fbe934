package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	envFile string
	v       = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "imagesync",
	Short: "Fill in catalog product images from the Pexels photo search API",
	Long: `imagesync reads a JSON product catalog, finds a stock photo for every product
that has no local image yet, stores it under the images directory and rewrites
each product's image_url to the local public path.`,
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&envFile, "env-file", ".env", "env file to read configuration from (missing file is ignored)")
	flags.String("products", "", "product catalog JSON file (PRODUCTS_FILE, default products.json)")
	flags.String("images-dir", "", "root directory for downloaded images (IMAGES_DIR, default img)")
	flags.Int("workers", 0, "number of products processed concurrently (SYNC_WORKERS, default 1)")
	flags.String("log-level", "", "debug, info, warn or error (LOG_LEVEL, default info)")
	flags.String("log-format", "", "console or json (LOG_FORMAT, default console)")

	_ = v.BindPFlag("PRODUCTS_FILE", flags.Lookup("products"))
	_ = v.BindPFlag("IMAGES_DIR", flags.Lookup("images-dir"))
	_ = v.BindPFlag("SYNC_WORKERS", flags.Lookup("workers"))
	_ = v.BindPFlag("LOG_LEVEL", flags.Lookup("log-level"))
	_ = v.BindPFlag("LOG_FORMAT", flags.Lookup("log-format"))
}
