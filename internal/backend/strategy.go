package backend

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/scribeview/desktop/internal/config"
)

// Strategy is one way of launching the backend. Strategies are tried in
// order; the first one whose process starts wins. Build returns a fresh
// command rooted in the given backend directory.
type Strategy struct {
	Name  string
	Build func(dir string) *exec.Cmd
}

// AppModule derives the ASGI import string from the entry-point file name.
// "main.py" becomes "main:app".
func AppModule(entryPoint string) string {
	name := strings.TrimSuffix(entryPoint, ".py")
	return name + ":app"
}

// StrategiesFromConfig builds the ordered strategy list. Each configured
// command is extended with the server module and the host/port arguments:
//
//	uv run uvicorn main:app --host 127.0.0.1 --port 8000
//	python -m uvicorn main:app --host 127.0.0.1 --port 8000
func StrategiesFromConfig(cfgs []config.StrategyConfig, entryPoint, host string, port int) []Strategy {
	module := AppModule(entryPoint)
	portArg := fmt.Sprintf("%d", port)

	out := make([]Strategy, 0, len(cfgs))
	for _, sc := range cfgs {
		sc := sc
		name := sc.Name
		if name == "" {
			name = sc.Command
		}
		out = append(out, Strategy{
			Name: name,
			Build: func(dir string) *exec.Cmd {
				args := make([]string, 0, len(sc.Args)+5)
				args = append(args, sc.Args...)
				args = append(args, module, "--host", host, "--port", portArg)
				cmd := exec.Command(sc.Command, args...)
				cmd.Dir = dir
				return cmd
			},
		})
	}
	return out
}
