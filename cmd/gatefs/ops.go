package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
)

func newCatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cat [path]",
		Short: "Print a file's contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newMediator()
			if err != nil {
				return err
			}
			data, err := m.ReadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newWriteCommand() *cobra.Command {
	var mode uint32

	cmd := &cobra.Command{
		Use:   "write [path] [content]",
		Short: "Write a file",
		Long:  "Write content to a file. With a single argument, content is read from stdin.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newMediator()
			if err != nil {
				return err
			}
			data, err := contentArg(cmd, args)
			if err != nil {
				return err
			}
			return m.WriteFile(cmd.Context(), args[0], data, fs.FileMode(mode))
		},
	}

	cmd.Flags().Uint32Var(&mode, "mode", 0o644, "file mode for created files")
	return cmd
}

func newAppendCommand() *cobra.Command {
	var mode uint32

	cmd := &cobra.Command{
		Use:   "append [path] [content]",
		Short: "Append to a file",
		Long:  "Append content to a file, creating it if needed. With a single argument, content is read from stdin.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newMediator()
			if err != nil {
				return err
			}
			data, err := contentArg(cmd, args)
			if err != nil {
				return err
			}
			return m.AppendFile(cmd.Context(), args[0], data, fs.FileMode(mode))
		},
	}

	cmd.Flags().Uint32Var(&mode, "mode", 0o644, "file mode for created files")
	return cmd
}

func contentArg(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 2 {
		return []byte(args[1]), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return data, nil
}

func newLsCommand() *cobra.Command {
	var long bool

	cmd := &cobra.Command{
		Use:   "ls [path]",
		Short: "List a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newMediator()
			if err != nil {
				return err
			}
			path := "."
			if len(args) == 1 {
				path = args[0]
			}

			if !long {
				names, err := m.ReadDirNames(cmd.Context(), path)
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}

			entries, err := m.ReadDir(cmd.Context(), path)
			if err != nil {
				return err
			}
			for _, entry := range entries {
				info, err := entry.Info()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %10d %s %s\n",
					info.Mode(), info.Size(), info.ModTime().Format("2006-01-02 15:04"), entry.Name())
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&long, "long", "l", false, "show entry metadata")
	return cmd
}

func newStatCommand() *cobra.Command {
	var noFollow bool

	cmd := &cobra.Command{
		Use:   "stat [path]",
		Short: "Print file metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newMediator()
			if err != nil {
				return err
			}
			var info fs.FileInfo
			if noFollow {
				info, err = m.Lstat(cmd.Context(), args[0])
			} else {
				info, err = m.Stat(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "name: %s\nsize: %d\nmode: %s\nmodified: %s\ndir: %v\n",
				info.Name(), info.Size(), info.Mode(), info.ModTime().Format("2006-01-02 15:04:05"), info.IsDir())
			return nil
		},
	}

	cmd.Flags().BoolVar(&noFollow, "no-follow", false, "do not follow symlinks")
	return cmd
}

func newMkdirCommand() *cobra.Command {
	var mode uint32

	cmd := &cobra.Command{
		Use:   "mkdir [path]",
		Short: "Create a directory and any missing parents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newMediator()
			if err != nil {
				return err
			}
			return m.MkdirAll(cmd.Context(), args[0], fs.FileMode(mode))
		},
	}

	cmd.Flags().Uint32Var(&mode, "mode", 0o755, "directory mode")
	return cmd
}

func newRmCommand() *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "rm [path]",
		Short: "Remove a file or directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newMediator()
			if err != nil {
				return err
			}
			if recursive {
				return m.RemoveAll(cmd.Context(), args[0])
			}
			return m.Remove(cmd.Context(), args[0])
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "remove directories and their contents")
	return cmd
}

func newCpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cp [src] [dst]",
		Short: "Copy a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newMediator()
			if err != nil {
				return err
			}
			return m.Copy(cmd.Context(), args[0], args[1])
		},
	}
}

func newMvCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mv [src] [dst]",
		Short: "Rename or move a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newMediator()
			if err != nil {
				return err
			}
			return m.Rename(cmd.Context(), args[0], args[1])
		},
	}
}

func newExistsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "exists [path]",
		Short: "Check whether a path exists (exit status 1 when missing)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newMediator()
			if err != nil {
				return err
			}
			ok, err := m.Exists(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "missing")
				os.Exit(1)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "exists")
			return nil
		},
	}
}
