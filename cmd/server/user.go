package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	pkgcrypto "github.com/serbe/rugo-sub000/internal/crypto"
	"github.com/serbe/rugo-sub000/internal/model"
	"github.com/serbe/rugo-sub000/internal/permission"
	"github.com/serbe/rugo-sub000/internal/protocol"
	"github.com/serbe/rugo-sub000/internal/repository"
	"github.com/serbe/rugo-sub000/internal/repository/postgres"
)

// userKeyEnv carries the login secret for user add when no flag supplies it.
const userKeyEnv = "RUGO_USER_KEY"

// allOps is the role of a bootstrap administrator.
var allOps = permission.Role(protocol.OpGet, protocol.OpInsert, protocol.OpUpdate, protocol.OpDelete, protocol.OpUser)

func newUserCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users directly in the store",
	}
	cmd.AddCommand(newUserAddCmd(root))
	return cmd
}

func newUserAddCmd(root *rootOptions) *cobra.Command {
	var (
		name     string
		key      string
		keyStdin bool
		role     int64
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Insert a user; a running server picks it up on restart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret, err := resolveKey(key, keyStdin, cmd.InOrStdin(), os.Getenv)
			if err != nil {
				return err
			}
			u, err := newUser(name, secret, role)
			if err != nil {
				return err
			}

			cfg, log, err := root.load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			db, err := postgres.New(cmd.Context(), cfg.Database.DSN(), 1, cfg.Database.AcquireTimeout)
			if err != nil {
				return fmt.Errorf("open pool: %w", err)
			}
			defer db.Close()

			id, err := insertUser(cmd.Context(), db, postgres.NewUserRepo(), u)
			if err != nil {
				return err
			}
			log.Info("user added", zap.Int64("id", id), zap.String("name", u.Name), zap.Int64("role", u.Role))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "user name (required)")
	cmd.Flags().StringVar(&key, "key", "", "login secret; visible in the process list, prefer --key-stdin or "+userKeyEnv)
	cmd.Flags().BoolVar(&keyStdin, "key-stdin", false, "read the login secret from the first line of stdin")
	cmd.Flags().Int64Var(&role, "role", allOps, "permission bitmask")
	_ = cmd.MarkFlagRequired("name")
	cmd.MarkFlagsMutuallyExclusive("key", "key-stdin")
	return cmd
}

// resolveKey picks the secret from --key, stdin or the environment, in that order.
func resolveKey(flagKey string, fromStdin bool, stdin io.Reader, getenv func(string) string) (string, error) {
	switch {
	case flagKey != "":
		return flagKey, nil
	case fromStdin:
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read key from stdin: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	if key := getenv(userKeyEnv); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("a key is required: pass --key-stdin or set %s", userKeyEnv)
}

// newUser validates the flags and hashes the key.
func newUser(name, key string, role int64) (model.User, error) {
	if name == "" || key == "" {
		return model.User{}, errors.New("name and key must not be empty")
	}
	if role < 0 {
		return model.User{}, fmt.Errorf("role must not be negative, got %d", role)
	}
	hash, salt, err := pkgcrypto.NewKey(key)
	if err != nil {
		return model.User{}, err
	}
	return model.User{Name: name, Role: role, KeyHash: hash, KeySalt: salt}, nil
}

func insertUser(ctx context.Context, db repository.Runner, users repository.UserRepository, u model.User) (int64, error) {
	var id int64
	err := db.Run(ctx, func(q repository.Querier) error {
		var err error
		id, err = users.Insert(ctx, q, u)
		return err
	})
	return id, err
}
