// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/disiqueira/gotree"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newStatusCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Render the running gsyncd's sync state as a colorized tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := fetchStatus(addr)
			if err != nil {
				return err
			}
			fmt.Println(renderStatusTree(resp))
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "http://127.0.0.1:3420", "gsyncd status server base address")
	return cmd
}

func fetchStatus(addr string) (statusResponse, error) {
	client := http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(addr + "/status")
	if err != nil {
		return statusResponse{}, fmt.Errorf("gsyncd status: request failed: %w", err)
	}
	defer resp.Body.Close()

	var out statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return statusResponse{}, fmt.Errorf("gsyncd status: decode response: %w", err)
	}
	return out, nil
}

// renderStatusTree builds a small colorized gotree view of the driver's
// advisory state for terminal diagnostics.
func renderStatusTree(s statusResponse) string {
	root := gotree.New("gsyncd")

	syncing := color.New(color.FgYellow).Sprint("syncing")
	if !s.CurrentlySyncing {
		syncing = color.New(color.FgGreen).Sprint("caught up")
	}
	root.Add(fmt.Sprintf("state: %s", syncing))

	if s.AwaitingPeers {
		root.Add(color.New(color.FgYellow).Sprint("awaiting peers"))
	}

	root.Add(fmt.Sprintf("connected peers: %s", color.New(color.FgCyan).Sprint(s.ConnectedPeers)))
	root.Add(fmt.Sprintf("highest observed peer height: %s", color.New(color.FgCyan).Sprint(s.HighestObservedPeerHeight)))

	return root.Print()
}
