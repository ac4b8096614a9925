package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// makeRTCPPacket builds a fake RTCP receiver report of the given size.
func makeRTCPPacket(n int) string {
	buf := make([]byte, n)
	rand.Read(buf)
	if n >= 2 {
		buf[0] = 0x80
		buf[1] = 201 // RR
	}
	return base64.StdEncoding.EncodeToString(buf)
}

func main() {
	targetURL := flag.String("url", "http://localhost:8080/events", "Target URL for record submission")
	apiKey := flag.String("api-key", "supersecretkey", "API Key for authentication")
	concurrency := flag.Int("c", 10, "Number of concurrent workers")
	duration := flag.Duration("d", 30*time.Second, "Duration of the load test")
	rps := flag.Int("rps", 1000, "Requests per second limit")
	sessions := flag.Int("sessions", 50, "Number of distinct session IDs to spread records over")
	configRatio := flag.Int("config-ratio", 100, "Send one config event per this many records")
	flag.Parse()

	log.Printf("Starting load test on %s", *targetURL)
	log.Printf("Concurrency: %d, Duration: %s, RPS: %d, Sessions: %d", *concurrency, *duration, *rps, *sessions)

	sessionIDs := make([]string, *sessions)
	for i := range sessionIDs {
		sessionIDs[i] = uuid.NewString()
	}

	var wg sync.WaitGroup
	var successCount, errorCount atomic.Int64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	limiter := rate.NewLimiter(rate.Limit(*rps), 100) // Allow bursts up to 100

	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			client := &http.Client{
				Timeout: 5 * time.Second,
			}

			sent := 0
			for {
				select {
				case <-ctx.Done():
					return
				default:
					limiter.Wait(ctx) // Wait for token from rate limiter

					sessionID := sessionIDs[rand.Intn(len(sessionIDs))]
					ts := time.Now().UnixMicro()

					var payload string
					if sent%*configRatio == 0 {
						payload = fmt.Sprintf(
							`{"session_id": "%s", "type": "audio_send_stream_config", "config_event": true, "timestamp_us": %d, "payload": {"local_ssrc": %d, "remote_ssrc": %d, "rtcp_mode": "compound", "codecs": [{"payload_name": "opus", "payload_type": 111}]}}`,
							sessionID, ts, rand.Uint32(), rand.Uint32())
					} else {
						payload = fmt.Sprintf(
							`{"session_id": "%s", "type": "rtcp_packet_incoming", "timestamp_us": %d, "payload": {"packet": "%s"}}`,
							sessionID, ts, makeRTCPPacket(32+rand.Intn(96)))
					}
					sent++

					req, err := http.NewRequestWithContext(ctx, http.MethodPost, *targetURL, bytes.NewBufferString(payload))
					if err != nil {
						continue // Should not happen
					}
					req.Header.Set("Content-Type", "application/json")
					req.Header.Set("X-API-Key", *apiKey)

					resp, err := client.Do(req)
					if err != nil {
						errorCount.Add(1)
						continue
					}

					if resp.StatusCode == http.StatusAccepted {
						successCount.Add(1)
					} else {
						errorCount.Add(1)
					}
					resp.Body.Close()
				}
			}
		}(i)
	}

	wg.Wait()

	totalRequests := successCount.Load() + errorCount.Load()
	actualRPS := float64(totalRequests) / duration.Seconds()

	log.Println("Load test finished.")
	log.Printf("Total Requests: %d", totalRequests)
	log.Printf("Successful (202 Accepted): %d", successCount.Load())
	log.Printf("Errors: %d", errorCount.Load())
	log.Printf("Actual RPS: %.2f", actualRPS)
}
