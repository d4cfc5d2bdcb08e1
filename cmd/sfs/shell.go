package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	sfs "github.com/pilat/go-sfs"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive session on an image",
	Long: `shell opens the configured image and reads commands from stdin,
one per line. The shell owns the working-directory state; the engine only
resolves a single name in a single directory per operation.

Commands:
  ls                 list the working directory
  cd <name|..|/>     change the working directory
  md <name>          make a directory
  mkfile <name> [text...]  create a file, optionally with content
  write <name> <text...>   append content to an existing file
  cat <name>         print a file's content
  rm <name>          remove an entry recursively
  stat               show free blocks and inodes
  pwd                print the working directory path
  exit               leave the shell`,
}

func init() {
	shellCmd.RunE = func(cmd *cobra.Command, args []string) error {
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

		runShell(img)

		return img.Save()
	}
}

// crumb is one segment of the shell's working-directory path. The engine
// has no notion of ".."; the shell keeps the breadcrumb trail itself.
type crumb struct {
	name  string
	inode uint16
}

type shellState struct {
	img    *sfs.Image
	crumbs []crumb
}

func (s *shellState) cwd() uint16 {
	if len(s.crumbs) == 0 {
		return sfs.RootInode
	}

	return s.crumbs[len(s.crumbs)-1].inode
}

func (s *shellState) path() string {
	if len(s.crumbs) == 0 {
		return "/"
	}

	var b strings.Builder
	for _, c := range s.crumbs {
		b.WriteByte('/')
		b.WriteString(c.name)
	}

	return b.String()
}

func runShell(img *sfs.Image) {
	state := &shellState{img: img}
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("sfs:%s> ", state.path())

		if !scanner.Scan() {
			return
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		if fields[0] == "exit" || fields[0] == "quit" {
			return
		}

		if err := state.dispatch(fields); err != nil {
			if sfs.IsCorruption(err) {
				// The image is inconsistent with itself; refuse to
				// keep operating on it.
				fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
				return
			}

			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}

func (s *shellState) dispatch(fields []string) error {
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "ls":
		entries, err := s.img.List(s.cwd())
		if err != nil {
			return err
		}

		for _, e := range entries {
			fmt.Printf("%-10s %s\n", e.Kind, e.Name)
		}

		return nil

	case "cd":
		if len(args) != 1 {
			return fmt.Errorf("usage: cd <name|..|/>")
		}

		switch args[0] {
		case "/":
			s.crumbs = nil
		case "..":
			if len(s.crumbs) > 0 {
				s.crumbs = s.crumbs[:len(s.crumbs)-1]
			}
		default:
			target, err := s.img.ChangeDir(s.cwd(), args[0])
			if err != nil {
				return err
			}

			s.crumbs = append(s.crumbs, crumb{name: args[0], inode: target})
		}

		return nil

	case "md":
		if len(args) != 1 {
			return fmt.Errorf("usage: md <name>")
		}

		_, err := s.img.MakeDir(s.cwd(), args[0])

		return err

	case "mkfile":
		if len(args) < 1 {
			return fmt.Errorf("usage: mkfile <name> [text...]")
		}

		inode, err := s.img.CreateFile(s.cwd(), args[0])
		if err != nil {
			return err
		}

		if len(args) > 1 {
			return s.writeContent(inode, strings.Join(args[1:], " "))
		}

		return nil

	case "write":
		if len(args) < 2 {
			return fmt.Errorf("usage: write <name> <text...>")
		}

		entries, err := s.img.List(s.cwd())
		if err != nil {
			return err
		}

		for _, e := range entries {
			if e.Name == args[0] {
				return s.writeContent(e.Inode, strings.Join(args[1:], " "))
			}
		}

		return fmt.Errorf("no file %q in %s", args[0], s.path())

	case "cat":
		if len(args) != 1 {
			return fmt.Errorf("usage: cat <name>")
		}

		entries, err := s.img.List(s.cwd())
		if err != nil {
			return err
		}

		for _, e := range entries {
			if e.Name == args[0] {
				content, err := s.img.ReadFile(e.Inode)
				if err != nil {
					return err
				}

				fmt.Printf("%s\n", content)

				return nil
			}
		}

		return fmt.Errorf("no file %q in %s", args[0], s.path())

	case "rm":
		if len(args) != 1 {
			return fmt.Errorf("usage: rm <name>")
		}

		return s.img.Remove(s.cwd(), args[0])

	case "stat":
		freeBlocks, freeInodes, err := s.img.Stats()
		if err != nil {
			return err
		}

		fmt.Printf("free blocks: %d\nfree inodes: %d\n", freeBlocks, freeInodes)

		return nil

	case "pwd":
		fmt.Println(s.path())
		return nil

	case "help":
		fmt.Println(shellCmd.Long)
		return nil

	default:
		return fmt.Errorf("unknown command %q, try help", cmd)
	}
}

func (s *shellState) writeContent(inode uint16, text string) error {
	n, err := s.img.WriteFile(inode, []byte(text))
	if err != nil {
		return fmt.Errorf("wrote %d bytes: %w", n, err)
	}

	return nil
}
