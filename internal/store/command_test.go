package store

import (
	"reflect"
	"testing"
	"time"
)

func testMonitor() Monitor {
	return Monitor{
		Script:          "storeci",
		Repository:      "MainRepository",
		VersionRegex:    `\d+\.\d+`,
		MinimumBlessing: "Development",
		Pundles: []PundleSpec{
			{Type: PundleTypeBundle, Name: "MyApp"},
			{Type: PundleTypePackage, Name: "MyApp-Tools"},
		},
	}
}

func TestPollingCommandFlagOrder(t *testing.T) {
	got := PollingCommand(testMonitor(), "/opt/store/storeci.sh")
	want := []string{
		"/opt/store/storeci.sh",
		"-repository", "MainRepository",
		"-bundle", "MyApp",
		"-package", "MyApp-Tools",
		"-versionRegex", `\d+\.\d+`,
		"-blessedAtLeast", "Development",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestPollingCommandNoPundles(t *testing.T) {
	m := testMonitor()
	m.Pundles = nil
	got := PollingCommand(m, "/opt/store/storeci.sh")
	want := []string{
		"/opt/store/storeci.sh",
		"-repository", "MainRepository",
		"-versionRegex", `\d+\.\d+`,
		"-blessedAtLeast", "Development",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestPollingCommandPundleOrderFollowsDeclaration(t *testing.T) {
	m := testMonitor()
	m.Pundles = []PundleSpec{
		{Type: PundleTypePackage, Name: "MyApp-Tools"},
		{Type: PundleTypeBundle, Name: "MyApp"},
	}
	got := PollingCommand(m, "s")

	// Reordering pundles reorders only the corresponding flags.
	want := []string{
		"s",
		"-repository", "MainRepository",
		"-package", "MyApp-Tools",
		"-bundle", "MyApp",
		"-versionRegex", `\d+\.\d+`,
		"-blessedAtLeast", "Development",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestCheckoutCommandAppendsTimeWindowAndChangelog(t *testing.T) {
	since := time.Date(2013, 3, 14, 15, 9, 26, 535_000_000, time.UTC)
	now := time.Date(2013, 3, 15, 9, 30, 0, 0, time.UTC)

	got := CheckoutCommand(testMonitor(), "s", since, now, "/tmp/store123.xml")
	want := []string{
		"s",
		"-repository", "MainRepository",
		"-bundle", "MyApp",
		"-package", "MyApp-Tools",
		"-versionRegex", `\d+\.\d+`,
		"-blessedAtLeast", "Development",
		"-since", "03/14/2013 15:09:26.535",
		"-now", "03/15/2013 09:30:00.000",
		"-changelog", "/tmp/store123.xml",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestCheckoutCommandTimestampsAlwaysUTC(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	local := time.Date(2013, 3, 14, 15, 9, 26, 535_000_000, est)
	utc := local.UTC()

	fromLocal := CheckoutCommand(testMonitor(), "s", local, local, "log.xml")
	fromUTC := CheckoutCommand(testMonitor(), "s", utc, utc, "log.xml")
	if !reflect.DeepEqual(fromLocal, fromUTC) {
		t.Errorf("zone-shifted timestamps should render identically: %v vs %v", fromLocal, fromUTC)
	}

	if got := FormatTimestamp(local); got != "03/14/2013 20:09:26.535" {
		t.Errorf("expected UTC rendering, got %q", got)
	}
}

func TestCheckoutCommandParcelBuilderFile(t *testing.T) {
	m := testMonitor()
	m.GenerateParcelBuilderFile = true
	m.ParcelBuilderFilename = "parcelsToBuild"

	got := CheckoutCommand(m, "s", time.Unix(0, 0), time.Unix(1, 0), "log.xml")
	last2 := got[len(got)-2:]
	if last2[0] != "-parcelBuilderFile" || last2[1] != "parcelsToBuild" {
		t.Errorf("expected trailing -parcelBuilderFile parcelsToBuild, got %v", last2)
	}

	m.GenerateParcelBuilderFile = false
	got = CheckoutCommand(m, "s", time.Unix(0, 0), time.Unix(1, 0), "log.xml")
	for _, arg := range got {
		if arg == "-parcelBuilderFile" {
			t.Error("parcel builder flag must not appear when generation is disabled")
		}
	}
}

func TestCommandBuildingIsDeterministic(t *testing.T) {
	m := testMonitor()
	a := PollingCommand(m, "s")
	b := PollingCommand(m, "s")
	if !reflect.DeepEqual(a, b) {
		t.Errorf("same input must produce same output: %v vs %v", a, b)
	}
}
