package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vdisk/vdisk"
	"github.com/vdisk/vdisk/filesystem/toyfs"
	"github.com/vdisk/vdisk/filesystem/toyfs/hostfile"
)

const prompt = "sh> "

// errExit ends the command loop
var errExit = errors.New("exit")

type command struct {
	// minArgs and maxArgs bound the operands; maxArgs < 0 means no limit
	minArgs int
	maxArgs int
	run     func(s *shell, args []string) error
}

var commands = map[string]command{
	"mkfs":   {0, 0, (*shell).mkfs},
	"open":   {2, 2, (*shell).open},
	"read":   {2, 2, (*shell).read},
	"write":  {2, -1, (*shell).write},
	"seek":   {2, 2, (*shell).seek},
	"close":  {1, 1, (*shell).close},
	"mkdir":  {1, -1, func(s *shell, args []string) error { return s.fs.Mkdir(args...) }},
	"rmdir":  {1, -1, func(s *shell, args []string) error { return s.fs.Rmdir(args...) }},
	"cd":     {1, 1, func(s *shell, args []string) error { return s.fs.Chdir(args[0]) }},
	"pwd":    {0, 0, (*shell).pwd},
	"link":   {2, 2, func(s *shell, args []string) error { return s.fs.Link(args[0], args[1]) }},
	"unlink": {1, 1, func(s *shell, args []string) error { return s.fs.Unlink(args[0]) }},
	"stat":   {1, -1, (*shell).stat},
	"ls":     {0, 0, (*shell).ls},
	"cat":    {1, -1, (*shell).cat},
	"cp":     {2, 2, func(s *shell, args []string) error { return s.fs.Copy(args[0], args[1]) }},
	"tree":   {0, 0, func(s *shell, _ []string) error { return renderTree(s.out, s.fs, s.fs.Getwd()) }},
	"import": {2, 2, (*shell).importFile},
	"export": {2, 2, (*shell).exportFile},
	"df":     {0, 0, (*shell).df},
	"fsck":   {0, 0, (*shell).fsck},
	"exit":   {0, 0, func(*shell, []string) error { return errExit }},
}

// shell runs commands against a filesystem, one line at a time
type shell struct {
	cfg    *Config
	fs     *toyfs.FileSystem
	logger *logrus.Logger
	out    io.Writer
	errOut io.Writer
}

func newShell(cfg *Config, logger *logrus.Logger, out, errOut io.Writer) (*shell, error) {
	s := &shell{
		cfg:    cfg,
		logger: logger,
		out:    out,
		errOut: errOut,
	}
	if err := s.mkfs(nil); err != nil {
		return nil, err
	}
	return s, nil
}

// run reads commands from in until it is exhausted or exit is given
func (s *shell) run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(s.out, prompt)
	for scanner.Scan() {
		if err := s.exec(strings.Fields(scanner.Text())); errors.Is(err, errExit) {
			return nil
		}
		fmt.Fprint(s.out, prompt)
	}
	return scanner.Err()
}

// exec runs a single tokenized command. Failures are reported and swallowed.
func (s *shell) exec(args []string) error {
	if len(args) == 0 {
		return nil
	}
	name, operands := args[0], args[1:]
	cmd, ok := commands[name]
	switch {
	case !ok:
		fmt.Fprintf(s.out, "unknown command: %s\n", name)
		return nil
	case len(operands) < cmd.minArgs:
		fmt.Fprintf(s.errOut, "%s: missing operand\n", name)
		return nil
	case cmd.maxArgs >= 0 && len(operands) > cmd.maxArgs:
		fmt.Fprintf(s.errOut, "%s: too many operands\n", name)
		return nil
	}
	err := cmd.run(s, operands)
	if err == nil || errors.Is(err, errExit) {
		return err
	}
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Fprintf(s.errOut, "%s: error: %s\n", name, line)
	}
	return nil
}

// mkfs replaces the filesystem with an empty one on a zeroed disk
func (s *shell) mkfs(_ []string) error {
	if s.fs != nil {
		if err := s.fs.Unmount(); err != nil {
			s.logger.Warnf("could not unmount previous filesystem: %v", err)
		}
		s.fs = nil
	}
	fs, err := vdisk.Create(s.cfg.DiskFile, s.cfg.Size, s.cfg.Params(s.logger))
	if err != nil {
		return err
	}
	s.fs = fs
	s.logger.WithFields(logrus.Fields{
		"disk":   s.cfg.DiskFile,
		"volume": fs.UUID().String(),
	}).Infof("created filesystem of %d blocks", fs.Usage().TotalBlocks)
	return nil
}

func (s *shell) close(args []string) error {
	fd, err := parseFD(args[0])
	if err != nil {
		return err
	}
	if err := s.fs.Close(fd); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "closed %d\n", fd)
	return nil
}

// shutdown releases the disk when the loop ends
func (s *shell) shutdown() error {
	if s.fs == nil {
		return nil
	}
	return s.fs.Unmount()
}

func (s *shell) open(args []string) error {
	mode, err := toyfs.ParseMode(args[1])
	if err != nil {
		return err
	}
	fd, err := s.fs.Open(args[0], mode)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, fd)
	return nil
}

func (s *shell) read(args []string) error {
	fd, err := parseFD(args[0])
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n < 0 {
		return fmt.Errorf("invalid byte count %q", args[1])
	}
	data, err := s.fs.Read(fd, n)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s\n", data)
	return nil
}

// write stores the remaining operands, joined by single spaces
func (s *shell) write(args []string) error {
	fd, err := parseFD(args[0])
	if err != nil {
		return err
	}
	_, err = s.fs.Write(fd, []byte(strings.Join(args[1:], " ")))
	return err
}

func (s *shell) seek(args []string) error {
	fd, err := parseFD(args[0])
	if err != nil {
		return err
	}
	pos, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid offset %q", args[1])
	}
	return s.fs.Seek(fd, pos)
}

func (s *shell) pwd(_ []string) error {
	fmt.Fprintln(s.out, s.fs.Getwd())
	return nil
}

func (s *shell) stat(args []string) error {
	infos, err := s.fs.Stat(args...)
	for _, info := range infos {
		renderStat(s.out, info)
	}
	return err
}

func (s *shell) ls(_ []string) error {
	for _, name := range s.fs.Ls() {
		fmt.Fprintln(s.out, name)
	}
	return nil
}

func (s *shell) cat(args []string) error {
	data, err := s.fs.Cat(args...)
	if len(data) > 0 {
		_, _ = s.out.Write(data)
		if data[len(data)-1] != '\n' {
			fmt.Fprintln(s.out)
		}
	}
	return err
}

func (s *shell) importFile(args []string) error {
	n, err := hostfile.Import(s.fs, args[0], args[1])
	if err != nil {
		return err
	}
	s.logger.Debugf("imported %d bytes from %s", n, args[0])
	return nil
}

func (s *shell) exportFile(args []string) error {
	n, err := hostfile.Export(s.fs, args[0], args[1])
	if err != nil {
		return err
	}
	s.logger.Debugf("exported %d bytes to %s", n, args[1])
	return nil
}

func (s *shell) df(_ []string) error {
	renderUsage(s.out, s.fs.Label(), s.fs.Usage())
	return nil
}

func (s *shell) fsck(_ []string) error {
	if err := s.fs.Check(); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "clean")
	return nil
}

func parseFD(arg string) (int, error) {
	fd, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("file descriptor not recognized: %q", arg)
	}
	return fd, nil
}
