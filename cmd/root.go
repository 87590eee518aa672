package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	Version = "1.3.0"
)

func showBanner() {
	greenColor := color.New(color.FgGreen, color.Bold)

	banner := []string{
		"╔══════════════════════════════════════════════════════╗",
		"║   ██████╗ ███████╗██╗      ██████╗ ██████╗ ██╗██████╗ ║",
		"║   ██╔══██╗██╔════╝██║     ██╔════╝ ██╔══██╗██║██╔══██╗║",
		"║   ██████╔╝█████╗  ██║     ██║  ███╗██████╔╝██║██║  ██║║",
		"║   ██╔══██╗██╔══╝  ██║     ██║   ██║██╔══██╗██║██║  ██║║",
		"║   ██║  ██║███████╗███████╗╚██████╔╝██║  ██║██║██████╔╝║",
		"║   ╚═╝  ╚═╝╚══════╝╚══════╝ ╚═════╝ ╚═╝  ╚═╝╚═╝╚═════╝ ║",
		"║                                                      ║",
		"║       📊 Editable Related-List Data Grid 📊          ║",
		"╚══════════════════════════════════════════════════════╝",
	}

	for _, line := range banner {
		greenColor.Println(line)
	}

	fmt.Print("                    ")
	color.New(color.FgCyan, color.Bold).Print("Version: ")
	color.New(color.FgYellow, color.Bold).Printf("%s\n", Version)
}

var rootCmd = &cobra.Command{
	Use:   "relgrid",
	Short: "An editable related-list data grid backed by your database",
	Long: `
RelGrid serves a related-list data grid over HTTP: paged record
fetching, inline cell editing, bulk updates, confirmed deletion and
CSV export, driven by per-object field metadata.

Database Support:
- PostgreSQL
- MySQL
- SQLite`,

	Run: func(cmd *cobra.Command, args []string) {
		showVersion, _ := cmd.Flags().GetBool("version")
		if showVersion {
			fmt.Printf("RelGrid CLI version %s\n", Version)
			return
		}

		showBanner()
		fmt.Println()
		cmd.Help()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./relgrid.config.json)")

	rootCmd.Flags().BoolP("version", "v", false, "Show CLI version")
}

func initConfig() {
	if err := godotenv.Load(); err != nil {
		godotenv.Load(".env")
		godotenv.Load(".env.local")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("json")
		viper.SetConfigName("relgrid.config")
	}

	viper.AutomaticEnv()

	viper.ReadInConfig()
}
