package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"battleship-salvo/internal/ai"
	"battleship-salvo/internal/app"
	"battleship-salvo/internal/codec"
	"battleship-salvo/internal/match"
	"battleship-salvo/internal/server"
	"battleship-salvo/internal/zk"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	switch os.Args[1] {
	case "play":
		cmdPlay(os.Args[2:])
	case "serve":
		cmdServe(os.Args[2:])
	case "keys":
		cmdKeys(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Println(`Battleship CLI

Commands:
  play   [--strategy targeting] [--prove --keys ./keys] [--seed N]
  serve  [--addr :8080] [--strategy targeting] [--prove --keys ./keys]
  keys   [--keys ./keys]

Environment: BATTLESHIP_ADDR, BATTLESHIP_KEYS, BATTLESHIP_STRATEGY,
BATTLESHIP_PROVE, BATTLESHIP_SEED, BATTLESHIP_LOG_LEVEL, ORIGIN_ALLOWLIST`)
}

// common holds the flags every game-running command takes.
type common struct {
	strategy string
	keys     string
	prove    bool
	seed     int64
	level    string
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.strategy, "strategy", getenv("BATTLESHIP_STRATEGY", "targeting"), "computer strategy: basic|targeting")
	fs.StringVar(&c.keys, "keys", getenv("BATTLESHIP_KEYS", "./keys"), "proving keys directory")
	fs.BoolVar(&c.prove, "prove", getenvBool("BATTLESHIP_PROVE", false), "attach a zk proof to every shot")
	fs.Int64Var(&c.seed, "seed", getenvInt("BATTLESHIP_SEED", 0), "random seed (0 = clock)")
	fs.StringVar(&c.level, "log-level", getenv("BATTLESHIP_LOG_LEVEL", "info"), "debug|info|warn|error")
}

func (c *common) session(logger *log.Logger) (*app.Session, error) {
	kind, err := ai.ParseKind(c.strategy)
	if err != nil {
		return nil, err
	}
	opts := app.Options{Strategy: kind, Seed: c.seed, Logger: logger}
	if c.prove {
		logger.Info("loading prover, first run sets up keys", "keys", c.keys)
		p, err := zk.LoadProver(c.keys)
		if err != nil {
			return nil, err
		}
		opts.Prover = p
	}
	return app.NewSession(opts)
}

func newLogger(level string, w io.Writer) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "battleship",
	})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		logger.Warn("unknown log level, using info", "level", level)
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

func cmdKeys(args []string) {
	fs := flag.NewFlagSet("keys", flag.ExitOnError)
	keys := fs.String("keys", getenv("BATTLESHIP_KEYS", "./keys"), "keys directory")
	_ = fs.Parse(args)

	if err := zk.EnsureShotKeys(*keys); err != nil {
		log.Fatal(err)
	}
	fmt.Println("✓ keys ready in", *keys)
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", getenv("BATTLESHIP_ADDR", ":8080"), "listen address")
	var c common
	c.register(fs)
	_ = fs.Parse(args)

	logger := newLogger(c.level, os.Stderr)
	sess, err := c.session(logger)
	if err != nil {
		log.Fatal(err)
	}
	allow := strings.Split(getenv("ORIGIN_ALLOWLIST", "http://localhost"+*addr+",http://127.0.0.1"+*addr), ",")

	srv := server.New(sess, logger)
	srv.Hub().AllowOrigins(originHosts(allow))
	mux := http.NewServeMux()
	srv.Routes(mux)
	logger.Info("serving", "addr", *addr)
	log.Fatal(http.ListenAndServe(*addr, server.WithCORS(allow, mux)))
}

// originHosts turns allowlisted origins into websocket host patterns.
func originHosts(origins []string) []string {
	var out []string
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if i := strings.Index(o, "://"); i >= 0 {
			o = o[i+3:]
		}
		out = append(out, o)
	}
	return out
}

func cmdPlay(args []string) {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	var c common
	c.register(fs)
	_ = fs.Parse(args)

	logger := newLogger(c.level, os.Stderr)
	sess, err := c.session(logger)
	if err != nil {
		log.Fatal(err)
	}
	p := &player{sess: sess, out: os.Stdout}
	p.show()
	p.run(os.Stdin)
}

// player is the line-oriented terminal front.
type player struct {
	sess *app.Session
	out  io.Writer
}

const playHelp = `commands:
  place SHIP COL ROW [h|v]   place your ship number SHIP
  auto                       place the rest of your ships at random
  strategy basic|targeting   pick the computer (setup only)
  fire COL ROW               shoot at the computer
  show                       draw both boards
  reveal                     show the computer's committed layout (game over)
  reset                      start a new match
  quit`

func (p *player) run(in io.Reader) {
	sc := bufio.NewScanner(in)
	fmt.Fprint(p.out, "> ")
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) > 0 {
			if fields[0] == "quit" || fields[0] == "exit" {
				return
			}
			if err := p.exec(fields); err != nil {
				fmt.Fprintln(p.out, "!", err)
			}
		}
		fmt.Fprint(p.out, "> ")
	}
}

func (p *player) exec(f []string) error {
	switch f[0] {
	case "help", "?":
		fmt.Fprintln(p.out, playHelp)
	case "show":
		p.show()
	case "strategy":
		if len(f) != 2 {
			return errors.New("usage: strategy basic|targeting")
		}
		if err := p.sess.SetStrategy(f[1]); err != nil {
			return err
		}
		fmt.Fprintln(p.out, "computer strategy:", p.sess.Status().Strategy)
	case "place":
		n, err := ints(f[1:], 3)
		if err != nil {
			return errors.New("usage: place SHIP COL ROW [h|v]")
		}
		vertical := len(f) > 4 && strings.HasPrefix(strings.ToLower(f[4]), "v")
		if err := p.sess.Place(n[0], n[1], n[2], vertical); err != nil {
			return err
		}
		p.show()
	case "auto":
		if err := p.sess.AutoPlace(); err != nil {
			return err
		}
		p.show()
	case "fire":
		n, err := ints(f[1:], 2)
		if err != nil {
			return errors.New("usage: fire COL ROW")
		}
		res, err := p.sess.Fire(n[0], n[1])
		if err != nil {
			return err
		}
		p.report(res)
	case "reveal":
		rv, err := p.sess.Reveal()
		if err != nil {
			return err
		}
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		return enc.Encode(rv)
	case "reset":
		if err := p.sess.Reset(); err != nil {
			return err
		}
		p.show()
	default:
		return fmt.Errorf("unknown command %q (try help)", f[0])
	}
	return nil
}

func ints(f []string, n int) ([]int, error) {
	if len(f) < n {
		return nil, errors.New("not enough numbers")
	}
	out := make([]int, n)
	for i := 0; i < n; i++ {
		v, err := strconv.Atoi(f[i])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func describe(s match.Shot) string {
	switch {
	case s.Sunk:
		return "HIT and sunk " + s.Ship
	case s.Hit:
		return "HIT"
	}
	return "MISS"
}

func (p *player) report(res codec.FireResult) {
	fmt.Fprintf(p.out, "you fire at %d,%d: %s\n", res.Shot.Col, res.Shot.Row, describe(res.Shot))
	if res.Proof != nil {
		fmt.Fprintf(p.out, "  proof verified: %v\n", res.ProofVerified)
	} else if res.ProofError != "" {
		fmt.Fprintf(p.out, "  proof error: %s\n", res.ProofError)
	}
	if res.Reply != nil {
		fmt.Fprintf(p.out, "computer fires at %d,%d: %s\n", res.Reply.Col, res.Reply.Row, describe(*res.Reply))
	}
	p.show()
	switch res.Outcome {
	case match.HumanWins:
		fmt.Fprintln(p.out, "You win! Type reveal to check the computer's fleet, reset to play again.")
	case match.HumanLoses:
		fmt.Fprintln(p.out, "You lose. Type reset to play again.")
	}
}

func (p *player) show() {
	st := p.sess.Status()
	own, enemy := p.sess.Grids()
	fmt.Fprintf(p.out, "mode: %s  strategy: %s\n", st.Mode, st.Strategy)
	if st.RootHex != "" {
		fmt.Fprintf(p.out, "computer fleet commitment: %s\n", st.RootHex)
	}
	fmt.Fprintf(p.out, "\nyour waters (%d afloat)\n%s", st.Own.Living, own)
	fmt.Fprintf(p.out, "\nenemy waters (%d afloat)\n%s", st.Enemy.Living, enemy)
	if st.Mode == match.Setup {
		for _, s := range st.Fleet {
			mark := " "
			if s.Placed {
				mark = "✓"
			}
			fmt.Fprintf(p.out, "  %s %d %-6s len %d\n", mark, s.Index, s.Name, s.Length)
		}
	}
}
