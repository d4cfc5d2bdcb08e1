package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	sfs "github.com/pilat/go-sfs"
)

var statCmd = &cobra.Command{
	Use:   "stat",
	Short: "Report free blocks and inodes of an image",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

		img, err := sfs.Open(
			sfs.WithImagePath(viper.GetString("image")),
			sfs.WithLogger(logger),
		)
		if err != nil {
			return err
		}
		defer img.Close()

		freeBlocks, freeInodes, err := img.Stats()
		if err != nil {
			return err
		}

		fmt.Printf("free blocks: %d\nfree inodes: %d\n", freeBlocks, freeInodes)

		return nil
	},
}
