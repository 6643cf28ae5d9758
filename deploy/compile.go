package deploy

import (
	"fmt"
	"path/filepath"

	"github.com/nspcc-dev/neo-go/cli/smartcontract"
	"github.com/nspcc-dev/neo-go/pkg/compiler"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// CommonDeployPrm groups common deployment parameters of the smart contract.
type CommonDeployPrm struct {
	NEF      nef.File
	Manifest manifest.Manifest
}

// Hash returns the address the contract gets when deployed by sender.
func (x CommonDeployPrm) Hash(sender util.Uint160) util.Uint160 {
	return state.CreateContractHash(sender, x.NEF.Checksum, x.Manifest.Name)
}

// CompileContract compiles the contract sources located in dir along with
// its config.yml.
func CompileContract(dir string) (CommonDeployPrm, error) {
	var res CommonDeployPrm

	ne, di, err := compiler.CompileWithOptions(dir, nil, nil)
	if err != nil {
		return res, fmt.Errorf("compile contract: %w", err)
	}

	conf, err := smartcontract.ParseContractConfig(filepath.Join(dir, "config.yml"))
	if err != nil {
		return res, fmt.Errorf("parse contract config: %w", err)
	}

	o := &compiler.Options{}
	o.Name = conf.Name
	o.ContractEvents = conf.Events
	o.ContractSupportedStandards = conf.SupportedStandards
	o.Permissions = make([]manifest.Permission, len(conf.Permissions))
	for i := range conf.Permissions {
		o.Permissions[i] = manifest.Permission(conf.Permissions[i])
	}
	o.SafeMethods = conf.SafeMethods
	m, err := compiler.CreateManifest(di, o)
	if err != nil {
		return res, fmt.Errorf("create manifest: %w", err)
	}

	res.NEF = *ne
	res.Manifest = *m
	return res, nil
}
