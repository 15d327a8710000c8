package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/nobriot/schnecken-bot-sub001/internal/book"
	"github.com/nobriot/schnecken-bot-sub001/internal/bot"
	"github.com/nobriot/schnecken-bot-sub001/internal/botlog"
	"github.com/nobriot/schnecken-bot-sub001/internal/engine"
	"github.com/nobriot/schnecken-bot-sub001/internal/lichess"
)

func loadConfig() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("SCHNECKEN")
	v.AutomaticEnv()

	v.SetDefault("cache_mb", 256)
	v.SetDefault("play_style", "normal")
	v.SetDefault("preferred_opponents", []string{})
	v.SetDefault("normal_book_dir", "")
	v.SetDefault("provocative_book_dir", "")

	v.SetConfigName("schnecken-bot")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.schnecken-bot")
	_ = v.ReadInConfig() // missing config file is not fatal; env vars and defaults cover it

	return v
}

func styleFromString(s string) engine.Style {
	switch strings.ToLower(s) {
	case "conservative":
		return engine.StyleConservative
	case "aggressive":
		return engine.StyleAggressive
	case "provocative":
		return engine.StyleProvocative
	default:
		return engine.StyleNormal
	}
}

// loadBook opens a compiled opening book from dir, or returns nil if dir
// is unset or the store cannot be read — a missing book is not fatal.
func loadBook(dir string) *book.Book {
	if dir == "" {
		return nil
	}
	b, err := book.LoadFromDir(dir)
	if err != nil {
		botlog.For("main").Warn().Err(err).Str("dir", dir).Msg("failed to load opening book")
		return nil
	}
	return b
}

func main() {
	cfg := loadConfig()
	log := botlog.For("main")

	token := cfg.GetString("api_token")
	if token == "" {
		fmt.Fprintln(os.Stderr, "SCHNECKEN_API_TOKEN (or api_token in config) must be set")
		os.Exit(1)
	}

	client := lichess.NewClient(token)
	username, err := client.GetUsername()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to fetch account username")
	}
	log.Info().Str("username", username).Msg("authenticated with lichess")

	normalBook := loadBook(cfg.GetString("normal_book_dir"))
	provocativeBook := loadBook(cfg.GetString("provocative_book_dir"))

	style := styleFromString(cfg.GetString("play_style"))
	b := bot.New(client, username, style, cfg.GetInt("cache_mb"),
		cfg.GetStringSlice("preferred_opponents"), normalBook, provocativeBook)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := b.Run(ctx); err != nil {
			log.Warn().Err(err).Msg("account event stream closed")
		}
	}()

	fmt.Println("schnecken-bot is running. Commands: play, exit, quit, help")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		switch strings.TrimSpace(scanner.Text()) {
		case "play", "p":
			go b.ChallengeSomebody()
		case "exit":
			b.RequestExit(false)
			cancel()
			return
		case "quit", "q":
			b.RequestExit(true)
			cancel()
			return
		case "help", "":
			printHelp()
		default:
			printHelp()
		}
	}
}

func printHelp() {
	fmt.Println("play or p  - challenge one of our preferred opponents")
	fmt.Println("exit       - shut down, leaving ongoing games running")
	fmt.Println("quit or q  - shut down, resigning ongoing games")
	fmt.Println("help       - show this message")
}
