package vfo

import (
	"context"
	"fmt"
	"math"
	"net"
	"strconv"
	"strings"

	"github.com/ftl/rigproxy/pkg/protocol"
	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"

	"github.com/ftl/hamops/core"
)

var log = logging.Logger("vfo")

// DefaultAddress of rigctld.
const DefaultAddress = "localhost:4532"

// Open a connection to a hamlib VFO at the given network address. If address is empty, DefaultAddress is used.
func Open(address string) (*VFO, error) {
	if address == "" {
		address = DefaultAddress
	}
	out, err := net.Dial("tcp", address)
	if err != nil {
		return nil, errors.Wrap(err, "cannot open VFO connection")
	}

	trx := protocol.NewTransceiver(out)
	trx.WhenDone(func() {
		out.Close()
	})
	log.Debugw("VFO connected", "address", address)

	return &VFO{
		send: func(ctx context.Context, request protocol.Request) ([]string, error) {
			response, err := trx.Send(ctx, request)
			if err != nil {
				return nil, err
			}
			return response.Data, nil
		},
		close: func() {
			trx.Close()
		},
	}, nil
}

// VFO reads and sets the frequency of a rig that is controlled through rigctld.
type VFO struct {
	send  func(context.Context, protocol.Request) ([]string, error)
	close func()
}

// CurrentFrequency asks the rig for its current frequency.
func (v *VFO) CurrentFrequency(ctx context.Context) (core.Frequency, error) {
	request := protocol.Request{Command: protocol.ShortCommand("f")}
	data, err := v.send(ctx, request)
	if err != nil {
		return 0, errors.Wrap(err, "polling frequency failed")
	}
	if len(data) == 0 {
		return 0, errors.New("empty frequency response")
	}

	f, err := hamlibToF(data[0])
	if err != nil {
		return 0, errors.Wrapf(err, "wrong frequency format %q", data[0])
	}
	log.Debugw("VFO frequency", "frequency", f)
	return f, nil
}

// SetFrequency tunes the rig to the given frequency.
func (v *VFO) SetFrequency(ctx context.Context, f core.Frequency) error {
	request := protocol.Request{Command: protocol.ShortCommand("F"), Args: []string{fToHamlib(f)}}
	_, err := v.send(ctx, request)
	return errors.Wrap(err, "sending frequency failed")
}

// Close the connection to the rig.
func (v *VFO) Close() {
	v.close()
	log.Debug("VFO shutdown")
}

func fToHamlib(f core.Frequency) string {
	return fmt.Sprintf("%d", int64(f))
}

// hamlibToF accepts integer Hz; some rigs report a fractional part, which is rounded away.
func hamlibToF(s string) (core.Frequency, error) {
	s = strings.TrimSpace(s)
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if d < 0 || math.IsNaN(d) || d > math.MaxInt64 {
		return 0, errors.Errorf("invalid frequency %s", s)
	}
	return core.Frequency(math.Round(d)), nil
}
