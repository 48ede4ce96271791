package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/park285/cheese-board/internal/boardclient"
	"github.com/park285/cheese-board/internal/msgcat"
	"github.com/park285/cheese-board/pkg/boarddto"
)

func main() {
	baseURL := os.Getenv("BOARD_BASE_URL")
	wsURL := os.Getenv("BOARD_FEED_URL")
	piece := os.Getenv("BOARD_PIECE")
	token := os.Getenv("BOARD_TOKEN")

	if baseURL == "" {
		log.Fatal("BOARD_BASE_URL is required")
	}
	if piece == "" {
		piece = "wn1"
	}

	headers := func() map[string]string {
		m := map[string]string{}
		if token != "" {
			m["Authorization"] = "Bearer " + token
		}
		return m
	}
	msgs := msgcat.MustDefault()

	client := boardclient.New(baseURL,
		boardclient.WithHeaderProvider(headers),
		boardclient.WithTimeout(8*time.Second),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	st, err := client.State(ctx)
	if err != nil {
		log.Printf("/state error: %v", err)
	} else {
		fmt.Println(msgs.Text("check.state", map[string]any{
			"Turn": st.Turn, "Captures": len(st.Captures), "FEN": st.FEN,
		}, st.FEN))
	}

	mv, err := client.Moves(ctx, piece)
	if err != nil {
		log.Printf("/moves error: %v", err)
	} else {
		fmt.Println(msgs.Text("check.moves", map[string]any{
			"Piece": mv.Piece, "Count": len(mv.Moves), "List": describe(mv.Moves),
		}, mv.Piece))
	}

	if wsURL == "" {
		log.Println("BOARD_FEED_URL not set; skipping feed check")
		return
	}

	// Observe for a short window
	wctx, wcancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer wcancel()
	err = boardclient.Watch(wctx, wsURL, headers, func(ev boarddto.Event) error {
		fmt.Printf("feed event type=%s turn=%s game=%s move=%s\n", ev.Type, ev.Turn, ev.GameID, ev.Move)
		return nil
	})
	if err != nil {
		log.Printf("feed error: %v", err)
	}
}

func describe(moves []boarddto.Move) string {
	parts := make([]string, 0, len(moves))
	for _, m := range moves {
		s := m.Type + ":" + m.Square
		if m.Target != "" {
			s += "x" + m.Target
		}
		parts = append(parts, s)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
