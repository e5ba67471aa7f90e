package service

import (
	"testing"

	"fireplace_rf/internal/decoder"
)

func TestDefaultDispatchTable(t *testing.T) {
	table := DefaultDispatchTable()
	if len(table) != len(decoder.AllCommands) {
		t.Fatalf("entries = %d", len(table))
	}
	off := table[decoder.Off].Params()
	if off.State == nil || *off.State || off.Power != nil {
		t.Fatalf("off params = %+v", off)
	}
	for _, c := range []decoder.CommandCode{decoder.Cmd1, decoder.Cmd4, decoder.Cmd6} {
		p := table[c].Params()
		if p.State == nil || !*p.State || p.Power == nil || *p.Power != int(c) {
			t.Fatalf("%s params = %+v", c, p)
		}
	}
}

func TestParseDispatchTable(t *testing.T) {
	table, err := ParseDispatchTable(map[string]CommandAction{
		"cmd6": {Action: "Cycle_Power", OffCycle: true},
		"cmd5": {State: "on", Preset: "eco"},
		"off":  {Action: "toggle"},
	})
	if err != nil {
		t.Fatalf("ParseDispatchTable: %v", err)
	}
	if a := table[decoder.Cmd6]; a.Action != ActionCyclePower || !a.OffCycle {
		t.Fatalf("cmd6 = %+v", a)
	}
	if p := table[decoder.Cmd5].Params(); p.PresetMode != "eco" || p.Power != nil {
		t.Fatalf("cmd5 = %+v", p)
	}
	if table[decoder.Off].Action != ActionToggle {
		t.Fatalf("off = %+v", table[decoder.Off])
	}
	// untouched entries keep their defaults
	if p := table[decoder.Cmd2].Params(); p.Power == nil || *p.Power != 2 {
		t.Fatalf("cmd2 = %+v", p)
	}
}

func TestParseDispatchTable_Errors(t *testing.T) {
	cases := map[string]map[string]CommandAction{
		"unknown name":   {"cmd9": {State: "on"}},
		"unknown code":   {"unknown": {State: "on"}},
		"bad action":     {"cmd1": {Action: "explode"}},
		"bad state":      {"cmd1": {State: "maybe"}},
		"negative power": {"cmd1": {State: "on", Power: -1}},
		"empty call":     {"cmd1": {Action: "call"}},
	}
	for name, raw := range cases {
		if _, err := ParseDispatchTable(raw); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
