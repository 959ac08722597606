package dispatcher

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/nihei9/charscope/engine"
	"github.com/nihei9/charscope/ucd"
)

// Outcome is the result of a single engine. Either Err is set, or Parsed and Description hold the decoded
// text and its descriptions.
type Outcome struct {
	Parsed      string
	Description []ucd.Description
	Err         error
}

type success struct {
	Parsed      string            `json:"parsed"`
	Description []ucd.Description `json:"description"`
}

type failure struct {
	Error string `json:"error"`
}

func (o Outcome) Failed() bool {
	return o.Err != nil
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	if o.Err != nil {
		return marshal(failure{
			Error: o.Err.Error(),
		})
	}
	descs := o.Description
	if descs == nil {
		descs = []ucd.Description{}
	}
	return marshal(success{
		Parsed:      o.Parsed,
		Description: descs,
	})
}

// Response maps engine names to their outcomes.
type Response map[string]Outcome

// marshal encodes v without escaping <, > and & so that names such as <control> are readable.
func marshal(v interface{}) ([]byte, error) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	err := enc.Encode(v)
	if err != nil {
		return nil, err
	}
	return bytes.TrimRight(b.Bytes(), "\n"), nil
}

type DispatcherOption func(d *Dispatcher) error

// Parallel makes a dispatcher run the engines of a request concurrently. Responses are the same as the
// ones of sequential dispatching.
func Parallel() DispatcherOption {
	return func(d *Dispatcher) error {
		d.parallel = true
		return nil
	}
}

// Dispatcher fans a payload out to every registered engine.
type Dispatcher struct {
	engines  []engine.Engine
	parallel bool
}

func New(engines []engine.Engine, opts ...DispatcherOption) (*Dispatcher, error) {
	if len(engines) == 0 {
		return nil, errors.New("at least one engine is required")
	}
	names := map[string]struct{}{}
	for _, e := range engines {
		if _, ok := names[e.Name()]; ok {
			return nil, fmt.Errorf("engine names must be unique: %v", e.Name())
		}
		names[e.Name()] = struct{}{}
	}

	d := &Dispatcher{
		engines: engines,
	}
	for _, opt := range opts {
		err := opt(d)
		if err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Engines returns the engine names in registration order.
func (d *Dispatcher) Engines() []string {
	names := make([]string, len(d.engines))
	for i, e := range d.engines {
		names[i] = e.Name()
	}
	return names
}

// Handle decodes src with every engine. A failing engine never affects the others, so the response always
// has one outcome per engine.
func (d *Dispatcher) Handle(src []byte) Response {
	outcomes := make([]Outcome, len(d.engines))
	if d.parallel {
		var wg sync.WaitGroup
		for i, e := range d.engines {
			wg.Add(1)
			go func(i int, e engine.Engine) {
				defer wg.Done()
				outcomes[i] = run(e, src)
			}(i, e)
		}
		wg.Wait()
	} else {
		for i, e := range d.engines {
			outcomes[i] = run(e, src)
		}
	}

	res := make(Response, len(d.engines))
	for i, e := range d.engines {
		res[e.Name()] = outcomes[i]
	}
	return res
}

func run(e engine.Engine, src []byte) Outcome {
	text, err := e.Parse(src)
	if err != nil {
		return Outcome{
			Err: err,
		}
	}
	return Outcome{
		Parsed:      text,
		Description: e.Describe(text),
	}
}

// HandleJSON is Handle followed by the JSON encoding of the response.
func (d *Dispatcher) HandleJSON(src []byte) ([]byte, error) {
	return d.Handle(src).JSON()
}

// JSON encodes r as a single JSON object keyed by engine name.
func (r Response) JSON() ([]byte, error) {
	return marshal(r)
}
