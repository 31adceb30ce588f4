// cmd/tools/chat-cli/main.go
//
// Interactive terminal client for the concierge chat service. Streams
// assistant tokens as they arrive and performs the booking follow-up
// when the assistant emits reservation details.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"lumiere-concierge/internal/client"
	"lumiere-concierge/internal/common/logger"
	"lumiere-concierge/internal/gateway"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "chat service base URL")
	flag.Parse()

	log := logger.NewStructured("warn", "console")
	c := client.New(*baseURL, log)

	history := []gateway.Message{}
	stdin := bufio.NewScanner(os.Stdin)

	fmt.Println("Lumière concierge (ctrl-d to quit)")
	for {
		fmt.Print("> ")
		if !stdin.Scan() {
			fmt.Println()
			return
		}
		input := strings.TrimSpace(stdin.Text())
		if input == "" {
			continue
		}

		history = append(history, gateway.Message{Role: "user", Content: input})

		result, err := c.Chat(context.Background(), history, func(tok string) {
			fmt.Print(tok)
		})
		fmt.Println()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			// Drop the failed turn so a retry resends it cleanly.
			history = history[:len(history)-1]
			continue
		}

		// The raw stream printed the reservation block verbatim; show
		// the rewritten tail (confirmation) once booking settles.
		if idx := strings.LastIndex(result.Text, "✅"); result.Booked && idx >= 0 {
			fmt.Println("\n" + strings.TrimSpace(result.Text[idx:]))
		}

		history = append(history, gateway.Message{Role: "assistant", Content: result.Text})
	}
}
