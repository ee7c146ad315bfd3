package policy

import "testing"

func TestClassifyInjectedPackage(t *testing.T) {
	v, _ := Classify("@nodebooks/ui")
	if v != VariantInjected {
		t.Fatalf("got %v, want VariantInjected", v)
	}
}

func TestClassifyFilesystemModules(t *testing.T) {
	for _, name := range []string{"fs", "fs/promises", "node:fs"} {
		if v, _ := Classify(name); v != VariantWrapFs {
			t.Errorf("Classify(%q) = %v, want VariantWrapFs", name, v)
		}
	}
}

func TestClassifyChildProcessDenied(t *testing.T) {
	v, _ := Classify("child_process")
	if v != VariantDeny {
		t.Fatalf("got %v, want VariantDeny", v)
	}
}

func TestClassifyNetModulesCarryKind(t *testing.T) {
	cases := map[string]NetKind{
		"http": NetKindHTTP, "https": NetKindHTTPS,
		"http2": NetKindHTTP2, "tls": NetKindTLS, "net": NetKindTCP,
	}
	for name, want := range cases {
		v, kind := Classify(name)
		if v != VariantWrapNet || kind != want {
			t.Errorf("Classify(%q) = (%v, %v), want (VariantWrapNet, %v)", name, v, kind, want)
		}
	}
}

func TestClassifyDgram(t *testing.T) {
	v, _ := Classify("dgram")
	if v != VariantWrapDgram {
		t.Fatalf("got %v, want VariantWrapDgram", v)
	}
}

func TestClassifyOrdinaryDependencyPassesThrough(t *testing.T) {
	v, _ := Classify("lodash")
	if v != VariantPassthrough {
		t.Fatalf("got %v, want VariantPassthrough", v)
	}
}
