package cli

import (
	"testing"
)

func TestExecuteWrapper(t *testing.T) {
	defer resetCLI()
	// inject fresh stores so PersistentPreRunE will no-op
	injectStores(t, listingHandler)
	rootCmd.SetArgs([]string{"cart", "show"})
	if _, err := captureOutput(Execute); err != nil {
		t.Fatalf("Execute wrapper failed: %v", err)
	}
}
