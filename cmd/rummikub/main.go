// Command rummikub is a thin operational CLI over the game service, useful
// for poking at a live Redis deployment without a client in front of it.
//
// Usage:
//
//	rummikub [-config path] create <num_players>
//	rummikub [-config path] join <game_id> <player_name>
//	rummikub [-config path] show <game_id> <player_name>
//	rummikub [-config path] list
//	rummikub [-config path] draw <game_id> <player_id>
//	rummikub [-config path] play <game_id> <player_id> <kind:tile,tile,...> ...
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"rummikub/internal/app"
	"rummikub/internal/config"
	"rummikub/internal/domain"
	"rummikub/internal/ports/redisstore"
)

func main() {
	configPath := flag.String("config", "", "path to the service config file")
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if *configPath != "" {
		if err := config.LoadServiceConfig(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	var password string
	var db int
	if cfg := config.GetServiceConfig(); cfg != nil {
		password = cfg.RedisPassword
		db = cfg.RedisDB
	}
	store := redisstore.Open(config.RedisAddress(), password, db)
	defer store.Close()

	svc := app.NewService(store, nil, logger, app.Options{
		LockTTL:           config.LockTTL(),
		LockRetryInterval: config.LockRetryInterval(),
		LockMaxAttempts:   config.LockMaxAttempts(),
		CompletedGameTTL:  config.CompletedGameTTL(),
	})

	if err := run(context.Background(), svc, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, svc *app.Service, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "create":
		if len(rest) != 1 {
			return fmt.Errorf("usage: create <num_players>")
		}
		numPlayers, err := strconv.Atoi(rest[0])
		if err != nil {
			return fmt.Errorf("invalid player count %q", rest[0])
		}
		state, err := svc.CreateGame(ctx, numPlayers)
		if err != nil {
			return err
		}
		return printState(state)

	case "join":
		if len(rest) != 2 {
			return fmt.Errorf("usage: join <game_id> <player_name>")
		}
		state, err := svc.JoinGame(ctx, rest[0], rest[1])
		if err != nil {
			return err
		}
		return printState(state)

	case "show":
		if len(rest) != 2 {
			return fmt.Errorf("usage: show <game_id> <player_name>")
		}
		state, err := svc.GetGame(ctx, rest[0], rest[1])
		if err != nil {
			return err
		}
		return printState(state)

	case "list":
		games, err := svc.GetGames(ctx)
		if err != nil {
			return err
		}
		for _, game := range games {
			fmt.Printf("%s  %-30s  %s  %d/%d players\n",
				game.GameID, game.Name, game.Status, len(game.Players), game.NumPlayers)
		}
		return nil

	case "draw":
		if len(rest) != 2 {
			return fmt.Errorf("usage: draw <game_id> <player_id>")
		}
		state, err := svc.ExecuteTurn(ctx, rest[0], rest[1], domain.DrawAction{})
		if err != nil {
			return err
		}
		return printState(state)

	case "play":
		if len(rest) < 3 {
			return fmt.Errorf("usage: play <game_id> <player_id> <kind:tile,tile,...> ...")
		}
		melds, err := parseMelds(rest[2:])
		if err != nil {
			return err
		}
		state, err := svc.ExecuteTurn(ctx, rest[0], rest[1], domain.PlayTilesAction{Melds: melds})
		if err != nil {
			return err
		}
		return printState(state)

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// parseMelds turns arguments like "group:7ra,7kb,7ba" into melds.
func parseMelds(args []string) ([]domain.Meld, error) {
	melds := make([]domain.Meld, 0, len(args))
	for _, arg := range args {
		kind, tileList, ok := strings.Cut(arg, ":")
		if !ok {
			return nil, fmt.Errorf("meld %q must look like kind:tile,tile,...", arg)
		}
		var meldKind domain.MeldKind
		switch kind {
		case "group":
			meldKind = domain.MeldGroup
		case "run":
			meldKind = domain.MeldRun
		default:
			return nil, fmt.Errorf("unknown meld kind %q", kind)
		}
		var tiles []domain.TileID
		for _, raw := range strings.Split(tileList, ",") {
			id := domain.TileID(strings.TrimSpace(raw))
			if _, err := id.Parse(); err != nil {
				return nil, err
			}
			tiles = append(tiles, id)
		}
		melds = append(melds, domain.NewMeld(meldKind, tiles))
	}
	return melds, nil
}

func printState(state domain.GameState) error {
	fmt.Printf("game %s (%s)  status=%s  turn=%d\n", state.GameID, state.Name, state.Status, state.CurrentPlayerIndex)
	for i, player := range state.Players {
		marker := " "
		if state.Status == domain.StatusInProgress && i == state.CurrentPlayerIndex {
			marker = "*"
		}
		fmt.Printf("%s %s (%s): %d tiles", marker, player.Name, player.ID, player.RackCount)
		if len(player.Rack.TileIDs) > 0 {
			fmt.Printf("  %v", player.Rack.TileIDs)
		}
		fmt.Println()
	}
	fmt.Printf("pool: %d tiles\n", len(state.Pool.TileIDs))
	for _, meld := range state.Board.Melds {
		fmt.Printf("board %s %s: %v\n", meld.Kind, meld.ID, meld.Tiles)
	}
	if state.WinnerPlayerID != "" {
		fmt.Printf("winner: %s\n", state.WinnerPlayerID)
	}
	return nil
}
