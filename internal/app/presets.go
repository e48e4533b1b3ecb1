package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/bft-labs/viscactl/internal/domain"
	"github.com/bft-labs/viscactl/pkg/log"
	"github.com/bft-labs/viscactl/pkg/visca"
)

// ErrInvalidPresetRange is returned for a capture range outside the
// assignable preset numbers.
var ErrInvalidPresetRange = errors.New("invalid preset range")

// Preset tool defaults.
const (
	DefaultPresetSettle     = 10 * time.Second
	DefaultPresetProbe      = time.Second
	DefaultPresetCommandGap = 200 * time.Millisecond
	DefaultInquiryAttempts  = 3

	maxMoveSpeed byte = 0x18
)

// PresetConfig configures a PresetTool.
type PresetConfig struct {
	Address         byte
	ResponseTimeout time.Duration

	// Settle is how long to wait for the camera to finish moving.
	Settle time.Duration
	// Probe is how long after a recall to check whether the camera moved.
	Probe time.Duration
	// CommandGap lets ack and completion replies drain before an inquiry.
	CommandGap time.Duration

	InquiryAttempts int
	CaptureFocus    bool
}

func (c *PresetConfig) setDefaults() {
	if c.Address == 0 {
		c.Address = 1
	}
	if c.ResponseTimeout <= 0 {
		c.ResponseTimeout = 2 * time.Second
	}
	if c.Settle <= 0 {
		c.Settle = DefaultPresetSettle
	}
	if c.Probe <= 0 {
		c.Probe = DefaultPresetProbe
	}
	if c.CommandGap <= 0 {
		c.CommandGap = DefaultPresetCommandGap
	}
	if c.InquiryAttempts <= 0 {
		c.InquiryAttempts = DefaultInquiryAttempts
	}
}

// CaptureResult is the outcome of a preset capture run.
type CaptureResult struct {
	Presets domain.PresetSet
	Home    domain.Position
	// Empty lists presets whose recall did not move the camera away from home.
	Empty []int
}

// PresetTool captures and restores camera presets over a Sender.
type PresetTool struct {
	sender Sender
	cfg    PresetConfig
	logger log.Logger
}

// NewPresetTool creates a preset tool. Zero config fields take defaults.
func NewPresetTool(sender Sender, cfg PresetConfig, logger log.Logger) *PresetTool {
	cfg.setDefaults()
	return &PresetTool{sender: sender, cfg: cfg, logger: logger}
}

// Position queries pan/tilt, zoom and optionally focus. Fields the camera
// did not answer are left empty.
func (p *PresetTool) Position(ctx context.Context) (domain.Position, error) {
	var pos domain.Position

	bo := newBackoff(DefaultBackoffInitial, DefaultBackoffMax)
	for attempt := 1; attempt <= p.cfg.InquiryAttempts; attempt++ {
		buf, err := p.inquire(ctx, visca.PanTiltPositionInquiry(p.cfg.Address))
		if err != nil {
			return pos, err
		}
		pan, tilt, derr := visca.DecodePanTiltPosition(buf)
		if derr == nil {
			pos.Pan, pos.Tilt = domain.HexWord(pan), domain.HexWord(tilt)
			break
		}
		p.logger.Debug("pan/tilt inquiry failed",
			log.Int("attempt", attempt),
			log.String("inbound", visca.Hex(buf)),
			log.Err(derr),
		)
		if attempt < p.cfg.InquiryAttempts {
			if err := bo.Wait(ctx); err != nil {
				return pos, err
			}
		}
	}

	buf, err := p.inquire(ctx, visca.ZoomPositionInquiry(p.cfg.Address))
	if err != nil {
		return pos, err
	}
	if zoom, derr := visca.DecodeZoomPosition(buf); derr == nil {
		pos.Zoom = domain.HexWord(zoom)
	} else {
		p.logger.Debug("zoom inquiry failed", log.Err(derr))
	}

	if p.cfg.CaptureFocus {
		buf, err := p.inquire(ctx, visca.FocusPositionInquiry(p.cfg.Address))
		if err != nil {
			return pos, err
		}
		if focus, derr := visca.DecodeFocusPosition(buf); derr == nil {
			pos.Focus = domain.HexWord(focus)
		} else {
			p.logger.Debug("focus inquiry failed", log.Err(derr))
		}
	}

	return pos, nil
}

// Capture records the position of every assignable preset in [from, to].
// Presets that leave the camera at home are listed as empty.
func (p *PresetTool) Capture(ctx context.Context, from, to int) (CaptureResult, error) {
	result := CaptureResult{Presets: domain.PresetSet{}}

	if from > to || !validBound(from) || !validBound(to) {
		return result, fmt.Errorf("%w: %d-%d", ErrInvalidPresetRange, from, to)
	}

	if err := p.command(ctx, visca.PresetSpeed(p.cfg.Address, maxMoveSpeed)); err != nil {
		return result, err
	}
	if err := p.goHome(ctx); err != nil {
		return result, err
	}

	home, err := p.Position(ctx)
	if err != nil {
		return result, err
	}
	result.Home = home
	p.logger.Info("home position",
		log.String("pan", home.Pan),
		log.String("tilt", home.Tilt),
		log.String("zoom", home.Zoom),
	)

	for n := from; n <= to; n++ {
		if !domain.AssignablePreset(n) {
			continue
		}

		if err := p.command(ctx, visca.PresetRecall(p.cfg.Address, byte(n))); err != nil {
			return result, err
		}
		if err := sleepCtx(ctx, p.cfg.Probe); err != nil {
			return result, err
		}

		probe, err := p.Position(ctx)
		if err != nil {
			return result, err
		}
		if probe == home {
			p.logger.Info("preset not set", log.Int("preset", n))
			result.Empty = append(result.Empty, n)
			continue
		}

		if err := sleepCtx(ctx, p.cfg.Settle); err != nil {
			return result, err
		}
		pos, err := p.Position(ctx)
		if err != nil {
			return result, err
		}
		result.Presets[domain.PresetKey(n)] = pos
		p.logger.Info("captured preset",
			log.Int("preset", n),
			log.String("pan", pos.Pan),
			log.String("tilt", pos.Tilt),
			log.String("zoom", pos.Zoom),
		)

		if err := p.goHome(ctx); err != nil {
			return result, err
		}
	}

	return result, nil
}

// Restore drives the camera to each stored position and saves it under its
// preset number. Incomplete or unassignable entries are skipped.
func (p *PresetTool) Restore(ctx context.Context, presets domain.PresetSet) (restored int, skipped []string, err error) {
	type entry struct {
		n   int
		key string
		pos domain.Position
	}

	var entries []entry
	for key, pos := range presets {
		n, perr := domain.ParsePresetKey(key)
		if perr != nil || !domain.AssignablePreset(n) || !pos.Complete() {
			skipped = append(skipped, key)
			continue
		}
		entries = append(entries, entry{n: n, key: key, pos: pos})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].n < entries[j].n })
	sort.Strings(skipped)

	for _, e := range entries {
		pan, perr := domain.ParseWord(e.pos.Pan)
		tilt, terr := domain.ParseWord(e.pos.Tilt)
		zoom, zerr := domain.ParseWord(e.pos.Zoom)
		if err := errors.Join(perr, terr, zerr); err != nil {
			p.logger.Warn("skipping preset", log.String("preset", e.key), log.Err(err))
			skipped = append(skipped, e.key)
			continue
		}

		if err := p.command(ctx, visca.ZoomDirect(p.cfg.Address, zoom)); err != nil {
			return restored, skipped, err
		}
		if e.pos.Focus != "" {
			if focus, ferr := domain.ParseWord(e.pos.Focus); ferr == nil {
				if err := p.command(ctx, visca.FocusDirect(p.cfg.Address, focus)); err != nil {
					return restored, skipped, err
				}
			}
		}
		if err := p.command(ctx, visca.PanTiltAbsolute(p.cfg.Address, maxMoveSpeed, maxMoveSpeed, pan, tilt)); err != nil {
			return restored, skipped, err
		}
		if err := sleepCtx(ctx, p.cfg.Settle); err != nil {
			return restored, skipped, err
		}
		if err := p.command(ctx, visca.PresetSet(p.cfg.Address, byte(e.n))); err != nil {
			return restored, skipped, err
		}

		restored++
		p.logger.Info("restored preset", log.Int("preset", e.n))
	}

	return restored, skipped, nil
}

func (p *PresetTool) goHome(ctx context.Context) error {
	if err := p.command(ctx, visca.Home(p.cfg.Address)); err != nil {
		return err
	}
	return sleepCtx(ctx, p.cfg.Settle)
}

// command sends cmd and waits out the command gap. Camera error replies are
// logged; only transport failures abort.
func (p *PresetTool) command(ctx context.Context, cmd visca.Command) error {
	buf, err := p.sender.Send(ctx, visca.Encode(cmd), p.cfg.ResponseTimeout)
	if err != nil {
		return fmt.Errorf("%s: %w", cmd.Label(), err)
	}
	if r := visca.ClassifySocket(buf); buf != nil && r.Kind == visca.ReplyError {
		p.logger.Warn("camera rejected command",
			log.String("label", cmd.Label()),
			log.String("reply", r.String()),
		)
	}
	return sleepCtx(ctx, p.cfg.CommandGap)
}

func (p *PresetTool) inquire(ctx context.Context, cmd visca.Command) ([]byte, error) {
	buf, err := p.sender.Send(ctx, visca.Encode(cmd), p.cfg.ResponseTimeout)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cmd.Label(), err)
	}
	return buf, nil
}

func validBound(n int) bool {
	return n >= 1 && n <= visca.MaxPresetNumber
}
