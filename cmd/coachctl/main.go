package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func main() {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("COACHCTL")
	v.AutomaticEnv()
	v.SetDefault("api_url", "http://localhost:8080")
	v.SetDefault("session_file", defaultSessionFile())

	cli := newCommandLine(v.GetString("api_url"), v.GetString("session_file"), os.Stdin, os.Stdout)
	if err := cli.run(os.Args); err != nil {
		if errors.Is(err, errHelp) {
			os.Exit(2)
		}
		log.Fatal().Err(err).Msg("command failed")
	}
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".coachctl-session.json"
	}
	return filepath.Join(dir, "coachctl", "session.json")
}

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  login -email EMAIL                  - sign in, the password is prompted next")
	fmt.Println("  logout                              - end the session")
	fmt.Println("  whoami                              - show the signed-in account")
	fmt.Println("  recover -email EMAIL                - reset a forgotten password with an emailed code")
	fmt.Println("  students [-q TERM]                  - list students, optionally filtered")
	fmt.Println("  student-add -name NAME [-batch B] [-phone P] [-fee AMOUNT] [-paid AMOUNT]")
	fmt.Println("  pending                             - students with outstanding fees")
	fmt.Println("  fees [-q TERM]                      - list fee payments and totals")
	fmt.Println("  announce -title T -content C [-batch B]")
	fmt.Println("  events | toppers | classes          - list the public page sections")
	fmt.Println("  lookup -q STUDENT_ID_OR_NAME        - public student search")
}
