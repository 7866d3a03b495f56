package remote

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func pkt(s string) string {
	return fmt.Sprintf("%04x%s", len(s)+4, s)
}

const (
	hashMaster = "95d09f2b10159347eece71399a7e2e907ea3df4f"
	hashTag    = "bd9dbf5aae1a3862dd1526723246b20206e5fc37"
)

func sampleAdvertisement() string {
	return pkt("# service=git-upload-pack\n") + "0000" +
		pkt(hashMaster+" HEAD\x00multi_ack side-band-64k symref=HEAD:refs/heads/master agent=git/2.43.0\n") +
		pkt(hashMaster+" refs/heads/master\n") +
		pkt(hashTag+" refs/tags/v1.0\n") +
		"0000"
}

func TestParseAdvertisement(t *testing.T) {
	adv, err := ParseAdvertisement([]byte(sampleAdvertisement()))
	if err != nil {
		t.Fatalf("ParseAdvertisement: %v", err)
	}
	if adv.Service != "git-upload-pack" {
		t.Errorf("Service = %q", adv.Service)
	}
	want := []Ref{
		{Name: "HEAD", Hash: hashMaster},
		{Name: "refs/heads/master", Hash: hashMaster},
		{Name: "refs/tags/v1.0", Hash: hashTag},
	}
	if diff := cmp.Diff(want, adv.Refs); diff != "" {
		t.Errorf("refs (-want +got):\n%s", diff)
	}
	for _, c := range []string{"multi_ack", "side-band-64k", "agent", "symref"} {
		if !adv.Capabilities.Has(c) {
			t.Errorf("missing capability %q in %q", c, adv.Capabilities)
		}
	}
	if adv.Capabilities.Has("ofs-delta") {
		t.Error("unexpected capability ofs-delta")
	}
}

func TestParseAdvertisementWithoutServiceHeader(t *testing.T) {
	data := pkt(hashMaster+" refs/heads/master\x00agent=x\n") + "0000"
	adv, err := ParseAdvertisement([]byte(data))
	if err != nil {
		t.Fatalf("ParseAdvertisement: %v", err)
	}
	if adv.Service != "" || len(adv.Refs) != 1 {
		t.Errorf("adv = %+v", adv)
	}
}

func TestParseAdvertisementEmptyRepository(t *testing.T) {
	zero := strings.Repeat("0", 40)
	data := pkt("# service=git-upload-pack\n") + "0000" +
		pkt(zero+" capabilities^{}\x00agent=git/2.43.0\n") + "0000"
	adv, err := ParseAdvertisement([]byte(data))
	if err != nil {
		t.Fatalf("ParseAdvertisement: %v", err)
	}
	if len(adv.Refs) != 0 {
		t.Errorf("refs = %v, want none", adv.Refs)
	}
	if !adv.Capabilities.Has("agent") {
		t.Error("capabilities not parsed")
	}
}

func TestParseAdvertisementMalformed(t *testing.T) {
	tests := map[string]string{
		"short prefix": "00",
		"bad prefix":   "zzzzabc",
		"overlong":     "00ffabc",
		"no space":     pkt(hashMaster + "\n"),
		"bad hash":     pkt("nothex refs/heads/x\n"),
		"tiny length":  "0002",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseAdvertisement([]byte(data)); !errors.Is(err, ErrMalformedAdvertisement) {
				t.Fatalf("err = %v, want ErrMalformedAdvertisement", err)
			}
		})
	}
}

func TestCapabilitiesString(t *testing.T) {
	c := ParseCapabilities("  b a\tc ")
	if got := c.String(); got != "a b c" {
		t.Errorf("String = %q", got)
	}
}
