package cli

import (
	"github.com/cheggaaa/pb/v3"
)

// barProgress renders progress on stderr.
type barProgress struct {
	bar *pb.ProgressBar
}

func (p *barProgress) Start(total int) {
	p.bar = pb.Full.Start(total)
}

func (p *barProgress) Increment() {
	if p.bar != nil {
		p.bar.Increment()
	}
}

func (p *barProgress) Finish() {
	if p.bar != nil {
		p.bar.Finish()
	}
}
