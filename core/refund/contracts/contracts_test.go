// Copyright 2025 The go-obsidian Authors

package contracts

import (
	"strings"
	"testing"

	"github.com/HITEYY/go-refunder/core/types"
	"github.com/HITEYY/go-refunder/core/vm"
)

func TestSelectors(t *testing.T) {
	tests := []struct {
		method string
		sig    string
	}{
		{"isApproved", "isApproved(address,address,bytes4,bytes)"},
		{"throwError", "throwError(address,address,bytes4,bytes)"},
		{"reentry", "reentry(address,address,bytes4,bytes)"},
		{"updateRefundableUser", "updateRefundableUser(address,bool)"},
	}
	for _, tt := range tests {
		have := types.BytesToSelector(permitterABI.Methods[tt.method].ID)
		if want := types.SelectorFromSig(tt.sig); have != want {
			t.Errorf("%s: have %s want %s", tt.method, have, want)
		}
	}
	if have, want := types.BytesToSelector(greeterABI.Methods["greetReentry"].ID), types.SelectorFromSig("greetReentry()"); have != want {
		t.Errorf("greetReentry: have %s want %s", have, want)
	}
}

func TestCodeMarkers(t *testing.T) {
	name, args, err := vm.ParseNativeCode(GreeterCode("hi", types.Selector{}, nil))
	if err != nil {
		t.Fatal(err)
	}
	if name != GreeterName {
		t.Fatalf("name mismatch: have %s want %s", name, GreeterName)
	}
	vals, err := greeterABI.Constructor.Inputs.Unpack(args)
	if err != nil {
		t.Fatal(err)
	}
	if vals[0].(string) != "hi" {
		t.Fatalf("greeting mismatch: have %v", vals[0])
	}
	if _, ok := Natives[PermitterName]; !ok {
		t.Fatal("permitter missing from natives")
	}
}

func TestSetGreetingInput(t *testing.T) {
	input := SetGreetingInput("Hello, Tester!")
	if have, want := types.BytesToSelector(input), types.SelectorFromSig("setGreeting(string)"); have != want {
		t.Fatalf("selector mismatch: have %s want %s", have, want)
	}
	if !strings.HasSuffix(string(input), "Hello, Tester!") {
		t.Fatalf("greeting not appended raw: %x", input)
	}
}
