package prefilter

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Lexicon holds the words stripped from unit text before the capital check.
// Entries are matched case-sensitively in their canonical capitalised form.
type Lexicon struct {
	// Divine lists reverential epithets (deity titles).
	Divine []string `yaml:"divine"`

	// Common lists words capitalised only by sentence position:
	// conjunctions, pronouns, frequent verb forms, interrogatives, imperatives.
	Common []string `yaml:"common"`

	// Replace makes a loaded lexicon replace the defaults instead of extending them.
	Replace bool `yaml:"replace"`
}

// LoadLexicon reads a lexicon from a YAML file.
func LoadLexicon(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}

	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("parse lexicon %s: %w", path, err)
	}

	return &lex, nil
}

// Extend returns base with l applied: l alone when Replace is set,
// otherwise the union of both, keeping base order first.
func (l Lexicon) Extend(base Lexicon) Lexicon {
	if l.Replace {
		return Lexicon{Divine: dedupe(l.Divine), Common: dedupe(l.Common)}
	}
	return Lexicon{
		Divine: dedupe(append(append([]string{}, base.Divine...), l.Divine...)),
		Common: dedupe(append(append([]string{}, base.Common...), l.Common...)),
	}
}

// dedupe drops blanks and repeated entries, preserving order.
func dedupe(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// DefaultLexicon returns the built-in Spanish lexicon.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Divine: dedupe(defaultDivine),
		Common: dedupe(defaultCommon),
	}
}

var defaultDivine = []string{
	"Dios", "Jehová", "Yahvé", "Adonai", "Señor", "SEÑOR",
	"Altísimo", "Todopoderoso", "Omnipotente", "Eterno",
	"Santo", "Creador", "Padre", "Espíritu",
}

var defaultCommon = []string{
	// conjunctions
	"Y", "E", "O", "U", "Pero", "Mas", "Sino", "Aunque", "Ni", "Porque", "Por", "Pues", "De",
	// conditionals and time
	"Si", "Cuando", "Mientras", "Antes", "Después", "Entonces", "Luego", "Hasta", "Nunca",
	"Siempre", "Ayer", "Hoy", "Mañana",
	// adverbs
	"Así", "También", "Tampoco", "Ahora", "Allí", "Aquí", "Donde", "Como", "Tan", "Aun", "Aún",
	"Cualquiera", "Nadie",
	// pronouns and articles
	"El", "La", "Los", "Las", "Un", "Una", "Unos", "Unas", "Él", "Ella", "Ellos", "Ellas",
	"Nosotros", "Nosotras", "Vosotros", "Vosotras",
	"Este", "Esta", "Estos", "Estas", "Ese", "Esa", "Esos", "Esas",
	"Aquel", "Aquella", "Aquellos", "Aquellas",
	"Lo", "Le", "Les", "Me", "Te", "Se", "Nos", "Os",
	"Que", "Quien", "Quienes", "Cual", "Cuales", "Cuyo", "Cuya", "Cuyos", "Cuyas",
	// prepositions
	"A", "En", "Con", "Para", "Sin", "Sobre", "Tras", "Bajo", "Hacia", "Desde",
	// auxiliaries and frequent sentence-initial verbs
	"Ha", "He", "Han", "Hay", "Has",
	"Fue", "Es", "Son", "Era", "Eran", "Sea", "Sean",
	"Está", "Están", "Estaba", "Estaban", "Esté", "Estén",
	"Había", "Habían", "Haya", "Hayan", "Hizo", "Hicieron", "Hace", "Hacen",
	"Haré", "Harás", "Hará", "Haremos", "Haréis", "Harán",
	"Habrá", "Habrán", "Habremos",
	"Dijo", "Dijeron", "Dice", "Dicen", "Di", "Da", "Dad", "Den",
	"Ven", "Ved", "Vio", "Vieron", "Ve", "Vayan", "Vaya",
	"Toma", "Tomad", "Tomen", "Tomó", "Tomaron",
	"Ya", "Más", "Menos", "Mucho", "Poco", "Todo", "Toda", "Todos", "Todas",
	"No", "Sí", "Tal", "Vez", "Bien", "Mal", "Según", "Entre",
	// imperatives
	"Oye", "Oíd", "Escucha", "Escuchad", "Mirad", "Guarda", "Guardad", "Guardaréis",
	"Camina", "Caminad", "Cree", "Creed", "Cread", "Orad", "Ora", "Habla", "Hablad",
	"Daos", "Dáos", "Perdona", "Perdonad", "Perdonen", "Sigue", "Seguid", "Busca", "Buscad",
	"Llama", "Llamad", "Lleven", "Lleva", "Ayuda", "Ayudad", "Confía", "Confíad",
	"Levanta", "Levantad", "Canta", "Cantad", "Bendice", "Bendecid", "Glorifica", "Glorificad",
	"Ama", "Amad", "Teme", "Temed", "Honra", "Honrad", "Alaba", "Alabad",
	"Tendré", "Tendrás", "Tendrá", "Tendremos", "Tendréis", "Tendrán",
	"Esforzaos", "Alegraos", "Regocijaos", "Gozaos", "Descansa", "Descansad", "Trabaja", "Trabajad",
	"Vive", "Vivid", "Muere", "Morid", "Persevera", "Perseverad", "Lucha", "Luchad",
	"Resiste", "Resistid", "Sana", "Sanad", "Cura", "Curad", "Protege", "Proteged",
	"Libera", "Liberad", "Construye", "Construid", "Edifica", "Edificad",
	"Siembra", "Sembrad", "Cosecha", "Cosechad",
	// interrogatives
	"Cuándo", "Dónde", "Cómo", "Por qué", "Cuál", "Cuáles", "Quién", "Quiénes", "Qué",
	// sentence adverbs
	"Solamente", "Simplemente", "Verdaderamente", "Realmente", "Ciertamente",
}
