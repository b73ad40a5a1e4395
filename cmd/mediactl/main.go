// Package main provides the transport-control CLI client.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
)

var (
	app    = kingpin.New("mediactl", "automedia transport control client")
	server = app.Flag("server", "Server address").Default("http://localhost:8080").String()

	// browse command
	browseCmd = app.Command("browse", "List the playable catalog")

	// play command
	playCmd     = app.Command("play", "Start or resume playback")
	playTrackID = playCmd.Arg("track-id", "Track ID to play (optional)").String()

	// pause command
	pauseCmd = app.Command("pause", "Pause playback")

	// status command
	statusCmd = app.Command("status", "Show the current playback status")

	// watch command
	watchCmd = app.Command("watch", "Stream playback status updates")
)

type browseItem struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	DurationMs int64  `json:"duration_ms"`
	Playable   bool   `json:"playable"`
}

type browseResponse struct {
	ParentID string       `json:"parent_id"`
	Items    []browseItem `json:"items"`
}

type statusResponse struct {
	SequenceNo uint64      `json:"sequence_no"`
	State      string      `json:"state"`
	Track      *browseItem `json:"track"`
	PositionMs int64       `json:"position_ms"`
	Rate       float64     `json:"rate"`
	Timestamp  string      `json:"timestamp"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	switch command {
	case browseCmd.FullCommand():
		browse()
	case playCmd.FullCommand():
		play(*playTrackID)
	case pauseCmd.FullCommand():
		pause()
	case statusCmd.FullCommand():
		status()
	case watchCmd.FullCommand():
		watch()
	}
}

func browse() {
	resp, err := http.Get(*server + "/v1/browse/root")
	if err != nil {
		fail(err)
	}
	defer resp.Body.Close()

	var result browseResponse
	decodeOrFail(resp, &result)

	fmt.Printf("Catalog (%d tracks):\n", len(result.Items))
	for i, item := range result.Items {
		fmt.Printf("  %2d. %s - %s (%.0fs)\n      id: %s\n", i+1, item.Artist, item.Title, float64(item.DurationMs)/1000, item.ID)
	}
}

func play(trackID string) {
	body := ""
	if trackID != "" {
		data, err := json.Marshal(map[string]string{"track_id": trackID})
		if err != nil {
			fail(err)
		}
		body = string(data)
	}

	resp, err := http.Post(*server+"/v1/playback/play", "application/json", strings.NewReader(body))
	if err != nil {
		fail(err)
	}
	defer resp.Body.Close()

	var result statusResponse
	decodeOrFail(resp, &result)
	printStatus(result)
}

func pause() {
	resp, err := http.Post(*server+"/v1/playback/pause", "application/json", nil)
	if err != nil {
		fail(err)
	}
	defer resp.Body.Close()

	var result statusResponse
	decodeOrFail(resp, &result)
	printStatus(result)
}

func status() {
	resp, err := http.Get(*server + "/v1/playback/status")
	if err != nil {
		fail(err)
	}
	defer resp.Body.Close()

	var result statusResponse
	decodeOrFail(resp, &result)
	printStatus(result)
}

func watch() {
	resp, err := http.Get(*server + "/v1/playback/events")
	if err != nil {
		fail(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fail(fmt.Errorf("unexpected status: %d", resp.StatusCode))
	}

	fmt.Println("Watching playback status (Ctrl-C to stop)...")
	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				fail(err)
			}
			return
		}
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		var result statusResponse
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &result); err != nil {
			fail(err)
		}
		printStatus(result)
	}
}

func printStatus(s statusResponse) {
	trackInfo := "(none)"
	if s.Track != nil {
		trackInfo = fmt.Sprintf("%s - %s", s.Track.Artist, s.Track.Title)
	}
	fmt.Printf("[%d] %-8s %s position=%dms rate=%.1f\n", s.SequenceNo, s.State, trackInfo, s.PositionMs, s.Rate)
}

func decodeOrFail(resp *http.Response, v any) {
	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			fail(fmt.Errorf("server error (%d): %s", resp.StatusCode, apiErr.Error))
		}
		fail(fmt.Errorf("unexpected status: %d", resp.StatusCode))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Printf("Error: %v\n", err)
	os.Exit(1)
}
