package a2c

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/samuelfneumann/acrobot-a2c/agent"
	"github.com/samuelfneumann/acrobot-a2c/environment/envconfig"
	"github.com/samuelfneumann/acrobot-a2c/network"
	"gonum.org/v1/gonum/mat"
)

func smallConfig() Config {
	c := DefaultConfig()
	c.ActorHiddenSizes = []int{16}
	c.CriticHiddenSizes = []int{16}
	return c
}

func TestCreateAndTrain(t *testing.T) {
	e, step, err := envconfig.CreateAcrobot(50, 11, 1.0)
	if err != nil {
		t.Fatalf("createAcrobot: %v", err)
	}

	a, err := smallConfig().Create(e, 11)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer a.Close()

	a.ResetMode(agent.Train)
	var steps int
	for {
		action, err := a.PlayStep(step)
		if err != nil {
			t.Fatalf("playStep: %v", err)
		}
		if step.Last() {
			break
		}

		step, _, err = e.Step(actionVec(action))
		if err != nil {
			t.Fatalf("step: %v", err)
		}
		steps++
	}

	if a.Updates() != steps {
		t.Errorf("train: want %v updates have %v", steps, a.Updates())
	}

	update, ok := a.LastUpdate()
	if !ok {
		t.Fatal("lastUpdate: no update reported")
	}
	for _, v := range []float64{update.Target, update.Value,
		update.NextValue, update.TDError, update.ActorLoss,
		update.CriticLoss} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("lastUpdate: non-finite update %+v", update)
		}
	}
}

func TestSameSeedSameAgent(t *testing.T) {
	e, step, err := envconfig.CreateAcrobot(500, 3, 1.0)
	if err != nil {
		t.Fatalf("createAcrobot: %v", err)
	}

	c := smallConfig()
	a, err := c.Create(e, 5)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer a.Close()
	b, err := c.Create(e, 5)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer b.Close()

	wa, wb := a.Weights(), b.Weights()
	for _, key := range []string{ActorKey, CriticKey} {
		for i := range wa[key] {
			for j := range wa[key][i] {
				if wa[key][i][j] != wb[key][i][j] {
					t.Fatalf("create: %v weights differ with the same seed",
						key)
				}
			}
		}
	}

	a.ResetMode(agent.Idle)
	b.ResetMode(agent.Idle)
	for i := 0; i < 20; i++ {
		actionA, err := a.PlayStep(step)
		if err != nil {
			t.Fatalf("playStep: %v", err)
		}
		actionB, err := b.PlayStep(step)
		if err != nil {
			t.Fatalf("playStep: %v", err)
		}
		if actionA != actionB {
			t.Fatalf("playStep: same seed selected %v and %v", actionA,
				actionB)
		}
	}
}

func TestTypedConfigJSON(t *testing.T) {
	data, err := json.Marshal(agent.NewTypedConfig(smallConfig()))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var typed agent.TypedConfig
	if err := json.Unmarshal(data, &typed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if typed.Type != MLP {
		t.Errorf("unmarshal: want type %v have %v", MLP, typed.Type)
	}

	c, ok := typed.Config.(Config)
	if !ok {
		t.Fatalf("unmarshal: want Config have %T", typed.Config)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if c.ActorSolver.Config != smallConfig().ActorSolver.Config {
		t.Errorf("unmarshal: want actor solver %v have %v",
			smallConfig().ActorSolver, c.ActorSolver)
	}
	if c.ActorActivations[0].String() != network.ReLU().String() {
		t.Errorf("unmarshal: want activation %v have %v", network.ReLU(),
			c.ActorActivations[0])
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"Discount", func(c *Config) { c.Discount = 1.5 }},
		{"Floor", func(c *Config) { c.ProbabilityFloor = 0 }},
		{"Activations", func(c *Config) { c.ActorActivations = nil }},
		{"HiddenSize", func(c *Config) { c.CriticHiddenSizes = []int{0} }},
		{"Solver", func(c *Config) { c.CriticSolver = nil }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := DefaultConfig()
			test.modify(&c)
			if err := c.Validate(); err == nil {
				t.Error("validate: want error")
			}
		})
	}
}

func actionVec(action int) *mat.VecDense {
	return mat.NewVecDense(1, []float64{float64(action)})
}
