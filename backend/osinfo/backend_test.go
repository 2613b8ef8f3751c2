package osinfo_test

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/mwantia/vfs/backend/backendtest"
	"github.com/mwantia/vfs/backend/osinfo"
)

func TestOSInfoBackend_UniversalInvariants(t *testing.T) {
	ctx := context.Background()
	b := osinfo.New()
	backendtest.AssertUniversalInvariants(t, ctx, b, []string{"hostname"})
}

func TestOSInfoBackend_RootFiles(t *testing.T) {
	ctx := context.Background()
	b := osinfo.New()

	children, err := b.List(ctx, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := map[string]bool{
		"kernel": false, "arch": false, "hostname": false,
		"uptime": false, "pid": false, "numcpu": false,
		"goroutines": false, "environ": false,
	}
	for _, c := range children {
		if _, ok := want[c]; ok {
			want[c] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("expected root child %q, not present in %v", name, children)
		}
	}
}

func TestOSInfoBackend_EnvironSubtree(t *testing.T) {
	ctx := context.Background()
	t.Setenv("DAVALL_TEST_VAR", "present")
	b := osinfo.New()

	body, err := b.Get(ctx, []string{"environ", "DAVALL_TEST_VAR"})
	if err != nil {
		t.Fatalf("Get environ/DAVALL_TEST_VAR: %v", err)
	}
	if string(body) != "present" {
		t.Fatalf("environ/DAVALL_TEST_VAR = %q, want %q", body, "present")
	}

	if _, err := b.Info(ctx, []string{"environ", "DAVALL_TEST_VAR_MISSING_XYZ"}); err == nil {
		t.Fatal("expected NotFoundError for an unset environment variable")
	}
}

func TestOSInfoBackend_PidMatchesProcess(t *testing.T) {
	ctx := context.Background()
	b := osinfo.New()

	body, err := b.Get(ctx, []string{"pid"})
	if err != nil {
		t.Fatalf("Get pid: %v", err)
	}
	if want := strconv.Itoa(os.Getpid()); string(body) != want {
		t.Fatalf("pid = %q, want %q", body, want)
	}
}
