package driver

import "testing"

func TestBuildCommandSubstitutesAndTokenizes(t *testing.T) {
	spec := LanguageSpec{
		CompileTpl: "g++ -O2 -std=c++17 -o {bin} {src}",
		Src:        "sol.cpp",
		Bin:        "sol",
	}
	argv, err := buildCommand(spec.CompileTpl, spec)
	if err != nil {
		t.Fatalf("buildCommand failed: %v", err)
	}
	want := []string{"g++", "-O2", "-std=c++17", "-o", "sol", "sol.cpp"}
	if len(argv) != len(want) {
		t.Fatalf("expected %v, got %v", want, argv)
	}
	for i := range want {
		if argv[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, argv)
		}
	}
}

func TestBuildCommandHonorsExtraFlags(t *testing.T) {
	spec := LanguageSpec{
		CompileTpl: "g++ -O2 {extraFlags} -o {bin} {src}",
		ExtraFlags: "-Wall -Wextra",
		Src:        "sol.cpp",
		Bin:        "sol",
	}
	argv, err := buildCommand(spec.CompileTpl, spec)
	if err != nil {
		t.Fatalf("buildCommand failed: %v", err)
	}
	want := []string{"g++", "-O2", "-Wall", "-Wextra", "-o", "sol", "sol.cpp"}
	if len(argv) != len(want) {
		t.Fatalf("expected %v, got %v", want, argv)
	}
}
