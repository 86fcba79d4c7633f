package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/urfave/cli/v2"
)

// apiClient is a thin wrapper over the admin HTTP surface's JSON
// endpoints. It carries no state beyond the base URL and a timeout,
// mirroring how little the admin surface itself needs to track.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(c *cli.Context) *apiClient {
	return &apiClient{
		baseURL: c.String("addr"),
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// get fetches path, retrying transient connection failures (the
// daemon restarting, a dropped connection) a few times with backoff
// before giving up. It does not retry on an HTTP error status, only
// on a failure to connect at all.
func (a *apiClient) get(path string) ([]byte, error) {
	var data []byte
	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3)
	err := backoff.Retry(func() error {
		resp, err := a.http.Get(a.baseURL + path)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		body, err := readBody(resp)
		if err != nil {
			return backoff.Permanent(err)
		}
		data = body
		return nil
	}, bo)
	if err != nil {
		return nil, fmt.Errorf("actorctl: %w", err)
	}
	return data, nil
}

func (a *apiClient) post(path string, body interface{}) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("actorctl: encoding request: %w", err)
	}
	resp, err := a.http.Post(a.baseURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("actorctl: %w", err)
	}
	defer resp.Body.Close()
	return readBody(resp)
}

func readBody(resp *http.Response) ([]byte, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("actorctl: reading response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("actorctl: server returned %s: %s", resp.Status, string(data))
	}
	return data, nil
}

func printPretty(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		fmt.Println(string(data))
		return nil
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func listWorkersCommand(c *cli.Context) error {
	data, err := newAPIClient(c).get("/workers")
	if err != nil {
		return err
	}
	return printPretty(data)
}

func listServicesCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("usage: actorctl services <worker-id>", 1)
	}
	data, err := newAPIClient(c).get(fmt.Sprintf("/workers/%s/services", c.Args().First()))
	if err != nil {
		return err
	}
	return printPretty(data)
}

func runCmdCommand(c *cli.Context) error {
	if c.NArg() < 2 {
		return cli.Exit("usage: actorctl runcmd <worker-id> <cmd>", 1)
	}
	workerID := c.Args().First()
	cmd := c.Args().Get(1)
	data, err := newAPIClient(c).post(fmt.Sprintf("/workers/%s/cmd", workerID), map[string]string{"cmd": cmd})
	if err != nil {
		return err
	}
	return printPretty(data)
}

func broadcastCommand(c *cli.Context) error {
	header := c.String("header")
	payload := c.String("payload")
	data, err := newAPIClient(c).post("/broadcast", map[string]string{"header": header, "payload": payload})
	if err != nil {
		return err
	}
	return printPretty(data)
}
