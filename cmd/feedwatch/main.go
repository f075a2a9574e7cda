// Command main is a development tool that holds a live feed session against
// a running server. It logs in, opens a session over the HTTP API and the
// WebSocket change feed, and reprints the aggregated feed whenever a
// row-level change event arrives.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"meydan/internal/feed"
	"meydan/internal/models"
	"meydan/internal/notifications"
)

func main() {
	host := flag.String("host", "localhost:8390", "API server host")
	email := flag.String("email", "ada@example.com", "User email")
	password := flag.String("password", "password123", "User password")
	flag.Parse()

	token, account, err := login(*host, *email, *password)
	if err != nil {
		log.Fatalf("Login failed: %v", err)
	}
	log.Printf("Logged in as %s", account.Email)

	client := newAPIClient(*host, token)
	watch := &tapChangeFeed{inner: &wsChangeFeed{host: *host, token: token}}

	session := feed.NewSession(account.ID, account.Email, client, client, watch)
	watch.after = func(e notifications.Event) {
		log.Printf("<- %-8s %-6s %s", e.Table, e.Op, e.ID)
		printFeed(session.View())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := session.Open(ctx); err != nil {
		log.Fatalf("Session open failed: %v", err)
	}
	defer session.Close()

	log.Printf("Watching feed as %s on %s", session.Profile().Name, *host)
	printFeed(session.View())

	<-ctx.Done()
	log.Println("Closing session...")
}

func printFeed(posts []models.FeedPost) {
	log.Printf("feed: %d posts", len(posts))
	for _, p := range posts {
		liked := " "
		if p.IsLiked {
			liked = "*"
		}
		edited := ""
		if p.Edited {
			edited = " (edited)"
		}
		log.Printf("  %s %-16s %3d likes %2d comments  %s%s",
			liked, p.User.Name, p.Likes, len(p.Comments), truncate(p.Content, 48), edited)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func login(host, email, password string) (string, *models.Account, error) {
	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return "", nil, err
	}

	resp, err := http.Post(
		fmt.Sprintf("http://%s/api/auth/login", host),
		"application/json",
		bytes.NewReader(body),
	)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("login returned status %d", resp.StatusCode)
	}

	var result struct {
		Token   string         `json:"token"`
		Account models.Account `json:"account"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", nil, err
	}
	if result.Token == "" {
		return "", nil, fmt.Errorf("no token in login response")
	}
	return result.Token, &result.Account, nil
}
