// Command fat32vol is a small interactive shell over a FAT32 image file. It
// is the CLI boundary described in spec.md §6: it owns relative-path
// resolution, the current-working-directory concept, and "."/".." handling,
// and loads/saves the image file itself. None of that belongs in the
// fat32 package, which only ever sees absolute paths and a byte buffer.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"path"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/ShHaWkK/fat32vol/fat32"
)

func main() {
	app := &cli.App{
		Name:      "fat32vol",
		Usage:     "Browse and edit a FAT32 image file",
		ArgsUsage: "IMAGE_FILE",
		Action:    runShell,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}

func runShell(c *cli.Context) error {
	imagePath := c.Args().First()
	if imagePath == "" {
		return cli.Exit("usage: fat32vol IMAGE_FILE", 1)
	}

	buf, err := os.ReadFile(imagePath)
	if err != nil {
		return cli.Exit(fmt.Sprintf("reading image: %s", err), 1)
	}

	view, err := fat32.NewMutableView(buf)
	if err != nil {
		return cli.Exit(fmt.Sprintf("opening image: %s", err), 1)
	}

	sh := &shell{view: view, buf: buf, imagePath: imagePath, cwd: "/"}
	sh.run(os.Stdin, os.Stdout)
	return nil
}

// shell owns everything the fat32 core deliberately doesn't: a
// current-working-directory, relative path resolution, and persisting the
// image back to disk after a write.
type shell struct {
	view      *fat32.MutableView
	buf       []byte
	imagePath string
	cwd       string
}

func (sh *shell) run(in *os.File, out *os.File) {
	scanner := bufio.NewScanner(in)
	fmt.Fprintf(out, "fat32vol: %s. Type 'help' for commands.\n", sh.imagePath)

	for {
		fmt.Fprintf(out, "%s> ", sh.cwd)
		if !scanner.Scan() {
			return
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		cmd, args := fields[0], fields[1:]
		if cmd == "exit" {
			return
		}

		if err := sh.dispatch(out, cmd, args); err != nil {
			fmt.Fprintf(out, "error: %s\n", err)
		}
	}
}

func (sh *shell) dispatch(out *os.File, cmd string, args []string) error {
	switch cmd {
	case "help":
		fmt.Fprintln(out, "commands: ls [PATH], cd PATH, cat PATH, pwd, put LOCAL_FILE IMAGE_PATH, help, exit")
		return nil
	case "pwd":
		fmt.Fprintln(out, sh.cwd)
		return nil
	case "ls":
		target := sh.cwd
		if len(args) > 0 {
			target = sh.resolve(args[0])
		}
		entries, err := sh.view.ListDirPath(target)
		if err != nil {
			return err
		}
		for _, e := range entries {
			kind := "-"
			if e.IsDir {
				kind = "d"
			}
			fmt.Fprintf(out, "%s %8d %s\n", kind, e.Size, e.Name)
		}
		return nil
	case "cd":
		if len(args) != 1 {
			return fmt.Errorf("usage: cd PATH")
		}
		target := sh.resolve(args[0])
		entry, err := sh.view.OpenPath(target)
		if err != nil {
			return err
		}
		if !entry.IsDir {
			return fmt.Errorf("%s is not a directory", target)
		}
		sh.cwd = target
		return nil
	case "cat":
		if len(args) != 1 {
			return fmt.Errorf("usage: cat PATH")
		}
		data, err := sh.view.ReadFileByPath(sh.resolve(args[0]))
		if err != nil {
			return err
		}
		out.Write(data)
		if len(data) == 0 || data[len(data)-1] != '\n' {
			fmt.Fprintln(out)
		}
		return nil
	case "put":
		if len(args) != 2 {
			return fmt.Errorf("usage: put LOCAL_FILE IMAGE_PATH")
		}
		payload, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		if err := sh.view.WriteFileByPath(sh.resolve(args[1]), payload); err != nil {
			return err
		}
		return os.WriteFile(sh.imagePath, sh.buf, 0o644)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// resolve turns a CLI-relative path (which may use ".", "..", or be
// relative to sh.cwd) into the absolute, "/"-separated path the fat32
// package requires. This is exactly the resolution spec.md §6 says the CLI
// owns, not the core.
func (sh *shell) resolve(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = path.Join(sh.cwd, p)
	}
	return path.Clean(p)
}
