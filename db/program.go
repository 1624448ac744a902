package db

// Program is a verb's code as it sits on disk: the raw source lines of
// the program record. Compiling it is the verb compiler's business,
// behind this narrow boundary; the persistence layer only carries the
// text and the terminator framing.
type Program struct {
	Lines []string
}

// readProgram reads program text up to the "." terminator line
func readProgram(d *IO) (*Program, error) {
	p := &Program{}
	for {
		line, err := d.ReadLine()
		if err != nil {
			return nil, err
		}
		if line == "." {
			return p, nil
		}
		p.Lines = append(p.Lines, line)
	}
}

// write emits the program text followed by the "." terminator
func (p *Program) write(d *IO) error {
	for _, line := range p.Lines {
		if err := d.WriteString(line); err != nil {
			return err
		}
	}
	return d.WriteString(".")
}
