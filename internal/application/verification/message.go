package verification

import (
	"fmt"
	"strings"

	"github.com/shopshap/internal/pkg/phone"
)

// ComposeMessage renders the SMS body carrying code.
func ComposeMessage(code string, expiryMinutes int, country *phone.Country) string {
	var b strings.Builder
	b.WriteString("🔐 ShopShap - Code de vérification\n\n")
	fmt.Fprintf(&b, "Votre code : %s\n\n", code)
	fmt.Fprintf(&b, "⏰ Ce code expire dans %d minutes.\n", expiryMinutes)
	if country != nil {
		fmt.Fprintf(&b, "%s Numéro vérifié pour : %s\n", country.Flag, country.Name)
	}
	b.WriteString("\nNe partagez ce code avec personne.")
	return b.String()
}
