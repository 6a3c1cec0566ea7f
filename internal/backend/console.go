package backend

import "bufio"

// LineHandler receives one line of backend console output.
type LineHandler func(line string)

// streamLoop reads the merged output stream and hands lines to the handler.
// The stream ends when the process exits (pipe EOF, or a read error once the
// pty closes).
func (p *Process) streamLoop() {
	defer p.console.Close()

	scanner := bufio.NewScanner(p.console)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		p.onLine(scanner.Text())
	}
}
