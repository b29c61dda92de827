package main

import (
	"errors"

	"github.com/spf13/cobra"

	"tasksync/internal/api"
	"tasksync/internal/config"
	"tasksync/internal/store"
)

func withStore(cfg *config.Config, fn func(*store.Store) error) error {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func newRemote(cfg *config.Config) *api.Client {
	return api.NewClient(cfg.APIURL)
}

func requireAtLeastArgs(min int, message string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) < min {
			return errors.New(message)
		}
		return nil
	}
}

func requireExactlyArgs(count int, message string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != count {
			return errors.New(message)
		}
		return nil
	}
}
