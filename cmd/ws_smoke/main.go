package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// End-to-end smoke against a running server: log in, create an instance,
// watch it over WebSocket and drive a short game through the HTTP API.
func main() {
	addr := flag.String("addr", "127.0.0.1:8080", "server host:port")
	username := flag.String("username", "smoke", "login username")
	flag.Parse()

	base := fmt.Sprintf("http://%s/api/v1", *addr)

	login := postJSON(base+"/auth/login", "", map[string]any{"username": *username})
	token, _ := login["token"].(string)
	if token == "" {
		log.Fatalf("login returned no token: %v", login)
	}

	created := postJSON(base+"/instances", token, nil)
	instance, _ := created["instance_id"].(string)
	if instance == "" {
		log.Fatalf("create instance failed: %v", created)
	}
	log.Printf("instance %s", instance)

	wsURL := fmt.Sprintf("ws://%s/ws?instance=%s&token=%s", *addr, instance, token)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if page := awaitPage(conn, "home"); page != "home" {
		log.Fatalf("expected home frame, got page %q", page)
	}

	inst := base + "/instances/" + instance
	postJSON(inst+"/setup", token, map[string]any{"grid_size": 8, "difficulty": "easy"})
	postJSON(inst+"/start", token, nil)

	if page := awaitPage(conn, "game"); page != "game" {
		log.Fatalf("expected game frame, got page %q", page)
	}

	postJSON(inst+"/reveal", token, map[string]any{"row": 0, "col": 0})
	if page := awaitPage(conn, ""); page == "" {
		log.Fatal("no frame after reveal")
	}

	log.Println("smoke test finished")
}

func postJSON(url, token string, body map[string]any) map[string]any {
	payload := []byte("{}")
	if body != nil {
		payload, _ = json.Marshal(body)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		log.Fatalf("build request %s: %v", url, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Fatalf("decode %s: %v", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("POST %s: status %d: %v", url, resp.StatusCode, out)
	}
	return out
}

// awaitPage drains state frames until one reports the wanted page, or any
// page when want is empty. Returns the last page seen.
func awaitPage(conn *websocket.Conn, want string) string {
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	last := ""
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return last
		}
		var obj map[string]any
		if err := json.Unmarshal(msg, &obj); err != nil {
			continue
		}
		state, _ := obj["state"].(map[string]any)
		if state == nil {
			continue
		}
		if page, ok := state["page"].(string); ok {
			last = page
			if want == "" || page == want {
				return page
			}
		}
	}
}
