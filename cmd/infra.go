package main

import (
	"os"

	infra "github.com/larivierec/infra-modules/pkg/cmd"
	_ "github.com/larivierec/infra-modules/pkg/modules/dns"
	_ "github.com/larivierec/infra-modules/pkg/modules/ipam"
	_ "github.com/larivierec/infra-modules/pkg/modules/virt"
)

func main() {
	os.Exit(infra.Execute(os.Args))
}
