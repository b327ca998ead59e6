// Copyright (c) 2024-2025 Darcy Buskermolen <darcy@dbitech.ca>
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/bankchen1/deiex-admin-sub000/gateway"
	"github.com/bankchen1/deiex-admin-sub000/notify"
	"github.com/bankchen1/deiex-admin-sub000/tokenstore"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newCallCmd() *cobra.Command {
	var (
		data     string
		query    []string
		username string
		password string
		mock     bool
	)

	cmd := &cobra.Command{
		Use:   "call [METHOD] PATH",
		Short: "Send one request through the gateway and print the response",
		Example: `  admin-gateway call --mock --username admin --password x GET /admin/users/stats
  admin-gateway call POST /kyc/applications/KYC00001/approve --data '{"note":"ok"}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			method, path := http.MethodGet, args[0]
			if len(args) == 2 {
				method, path = strings.ToUpper(args[0]), args[1]
			}

			q := url.Values{}
			for _, kv := range query {
				k, v, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("query parameter %q is not key=value", kv)
				}
				q.Add(k, v)
			}

			var body any
			if data != "" {
				if !json.Valid([]byte(data)) {
					return fmt.Errorf("--data is not valid JSON")
				}
				body = json.RawMessage(data)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if mock {
				cfg.Mock.Enabled = true
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.API.Timeout)
			defer cancel()

			store, closer, err := tokenstore.Open(ctx, cfg)
			if err != nil {
				return err
			}
			defer closer.Close()

			client, err := gateway.New(cfg, store,
				gateway.WithNotifier(notify.LogNotifier{}),
				gateway.WithNavigator(notify.LogNavigator{}),
			)
			if err != nil {
				return err
			}

			if username != "" {
				if err := client.Login(ctx, username, password); err != nil {
					return err
				}
				log.Debug().Str("username", username).Msg("logged in")
			}

			resp, err := client.Do(ctx, method, path, body, gateway.WithQuery(q))
			if err != nil {
				return err
			}

			var out bytes.Buffer
			if err := json.Indent(&out, resp, "", "  "); err != nil {
				out.Reset()
				out.Write(resp)
			}
			out.WriteByte('\n')
			_, err = cmd.OutOrStdout().Write(out.Bytes())
			return err
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "JSON request body")
	cmd.Flags().StringArrayVarP(&query, "query", "q", nil, "Query parameter as key=value, repeatable")
	cmd.Flags().StringVarP(&username, "username", "u", "", "Log in with this user before the call")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password for --username")
	cmd.Flags().BoolVar(&mock, "mock", false, "Answer the call from fixtures instead of the network")
	return cmd
}
