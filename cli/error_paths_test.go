package cli

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
)

func TestBrowse_FetchFailureSurfacesStoredMessage(t *testing.T) {
	defer resetCLI()
	injectStores(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rootCmd.SetArgs([]string{"browse"})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatalf("expected error when fetch fails")
	}
	if err.Error() != "The requested resource was not found." {
		t.Fatalf("error = %q, want the 404 user-facing message", err.Error())
	}
	rootCmd.SetArgs(nil)
}

func TestFilterCategory_InvalidID(t *testing.T) {
	defer resetCLI()
	injectStores(t, listingHandler)

	rootCmd.SetArgs([]string{"filter", "category", "abc"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatalf("expected error for non-numeric category id")
	}
	rootCmd.SetArgs(nil)
}

func TestPage_InvalidArgument(t *testing.T) {
	defer resetCLI()
	injectStores(t, listingHandler)

	rootCmd.SetArgs([]string{"page", "sideways"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatalf("expected error for non-numeric page")
	}
	rootCmd.SetArgs(nil)
}

func TestFilterPageSize_Invalid(t *testing.T) {
	defer resetCLI()
	injectStores(t, listingHandler)

	for _, arg := range []string{"zero", "0", "-2"} {
		rootCmd.SetArgs([]string{"filter", "page-size", arg})
		if err := rootCmd.Execute(); err == nil {
			t.Fatalf("expected error for page size %q", arg)
		}
	}
	rootCmd.SetArgs(nil)
}

func TestCartSet_InvalidQuantity(t *testing.T) {
	defer resetCLI()
	injectStores(t, listingHandler)

	rootCmd.SetArgs([]string{"cart", "set", "p1", "lots"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatalf("expected error for non-numeric quantity")
	}
	rootCmd.SetArgs(nil)
}

func TestCartLoad_CorruptSnapshot(t *testing.T) {
	defer resetCLI()
	injectStores(t, listingHandler)

	path := filepath.Join(t.TempDir(), "cart.json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	rootCmd.SetArgs([]string{"cart", "load", "--file", path})
	if err := rootCmd.Execute(); err == nil {
		t.Fatalf("expected error for corrupt snapshot")
	}
	rootCmd.SetArgs(nil)
}
