package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"goRowSet/internal/engine"
)

const shellHelp = `Commands:
  where <clause>    keep rows matching the clause
  order <clause>    order rows by the clause
  fields <a,b,...>  print only these fields
  show              print the current view
  count             print the number of rows in the current view
  reset             clear where, order and fields
  quit              leave the shell`

// session is the state of an interactive shell over one loaded row set.
type session struct {
	eng *engine.Engine
	q   engine.Query
}

// eval runs one shell line. It reports whether the shell should exit.
func (s *session) eval(w io.Writer, line string) (bool, error) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "":
		return false, nil
	case "quit", "exit":
		return true, nil
	case "help":
		fmt.Fprintln(w, shellHelp)
	case "where":
		q := s.q
		q.Where = arg
		return false, s.apply(w, q)
	case "order":
		q := s.q
		q.OrderBy = arg
		return false, s.apply(w, q)
	case "fields":
		q := s.q
		q.Fields = nil
		for _, f := range strings.Split(arg, ",") {
			if f = strings.TrimSpace(f); f != "" {
				q.Fields = append(q.Fields, f)
			}
		}
		return false, s.apply(w, q)
	case "show":
		return false, s.print(w)
	case "count":
		rs, err := s.eng.Select(loadedName, s.q)
		if err != nil {
			return false, err
		}
		fmt.Fprintln(w, rs.Len())
	case "reset":
		s.q = engine.Query{}
	default:
		return false, errors.Errorf("unknown command %q, try help", cmd)
	}
	return false, nil
}

func (s *session) print(w io.Writer) error {
	return s.apply(w, s.q)
}

// apply prints the view for q and keeps q only if it evaluates.
func (s *session) apply(w io.Writer, q engine.Query) error {
	rs, err := s.eng.Select(loadedName, q)
	if err != nil {
		return err
	}
	s.q = q
	printRowSet(w, rs)
	return nil
}

func (a *app) shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Explore the loaded rows interactively",
		Long:  shellHelp,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer eng.Close()

			line := liner.NewLiner()
			defer line.Close()
			line.SetCtrlCAborts(true)

			history := historyPath()
			if f, err := os.Open(history); err == nil {
				_, _ = line.ReadHistory(f)
				f.Close()
			}

			s := &session{eng: eng}
			w := cmd.OutOrStdout()
			for {
				input, err := line.Prompt("rowset> ")
				if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return err
				}
				if strings.TrimSpace(input) != "" {
					line.AppendHistory(input)
				}
				quit, err := s.eval(w, input)
				if err != nil {
					fmt.Fprintln(w, "ERROR:", err)
				}
				if quit {
					break
				}
			}

			if f, err := os.Create(history); err == nil {
				_, _ = line.WriteHistory(f)
				f.Close()
			}
			return nil
		},
	}
}

func historyPath() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, ".rowset_history")
}
