package app

import (
	"github.com/specialistvlad/nmgraph/internal/registry"
	"github.com/specialistvlad/nmgraph/modules/add_const"
	"github.com/specialistvlad/nmgraph/modules/mse_loss"
	"github.com/specialistvlad/nmgraph/modules/print"
	"github.com/specialistvlad/nmgraph/modules/real_function"
	"github.com/specialistvlad/nmgraph/modules/taylor_net"
	"github.com/specialistvlad/nmgraph/modules/zeros"
)

// coreModules is the definitive list of all module types that are compiled
// into the nmgraph binary.
var coreModules = []registry.Provider{
	&zeros.Provider{},
	&real_function.Provider{},
	&add_const.Provider{},
	&taylor_net.Provider{},
	&mse_loss.Provider{},
	&print.Provider{},
}
