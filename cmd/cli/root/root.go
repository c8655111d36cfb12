package root

import (
	"github.com/crucial707/vigil/cmd/cli/admin"
	"github.com/crucial707/vigil/cmd/cli/auth"
	"github.com/crucial707/vigil/cmd/cli/occurrences"
	"github.com/crucial707/vigil/cmd/cli/patrol"
	"github.com/spf13/cobra"
)

// New builds the vigil command tree.
func New() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vigil",
		Short: "Vigil security operations CLI",
		Long: `Command line interface for the Vigil API.

The API address is read from VIGIL_API_URL (default http://localhost:8080/api).
Run "vigil login" first; the token is kept in ~/.vigil_token.`,
		SilenceUsage: true,
	}

	auth.InitAuth(rootCmd)
	occurrences.InitOccurrences(rootCmd)
	patrol.InitRounds(rootCmd)
	patrol.InitShifts(rootCmd)
	admin.InitAdmin(rootCmd)
	return rootCmd
}
