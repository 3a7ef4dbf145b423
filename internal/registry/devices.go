package registry

import (
	_ "github.com/liquidctl/coolerctl/driver/commandercore" // Register the Commander Core driver
	_ "github.com/liquidctl/coolerctl/driver/corsairpsu"    // Register the Corsair PSU driver
)
