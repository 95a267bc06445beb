package cli

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/diillson/cloud-optimizer-go/pkg/version"
)

// displayWelcomeBanner exibe o banner de boas-vindas com informações de versão.
func displayWelcomeBanner(versionStr string) {
	banner := `
   _____ _                 _    ____        _   _           _
  / ____| |               | |  / __ \      | | (_)         (_)
 | |    | | ___  _   _  __| | | |  | |_ __ | |_ _ _ __ ___  _ _______ _ __
 | |    | |/ _ \| | | |/ _' | | |  | | '_ \| __| | '_ ' _ \| |_  / _ \ '__|
 | |____| | (_) | |_| | (_| | | |__| | |_) | |_| | | | | | | |/ /  __/ |
  \_____|_|\___/ \__,_|\__,_|  \____/| .__/ \__|_|_| |_| |_|_/___\___|_|
                                     | |
                                     |_|
`
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()

	fmt.Println(green(banner))

	// Obtem a string formatada da versão através do pacote version
	fmt.Println(blue(fmt.Sprintf("Cloud Optimizer CLI (v%s)", version.FormatVersion())))
}

// checkLatestVersion verifica se uma versão mais recente está disponível.
func checkLatestVersion(currentVersion string) {
	version.CheckLatestVersion(currentVersion)
}
