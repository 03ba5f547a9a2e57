package extractor

import (
	"fmt"
	"strings"
)

// DefaultPrompt is the built-in extract_names system prompt.
// It is written to the prompt directory on first use so it can be edited.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
const DefaultPrompt = `Eres un experto en análisis de textos bíblicos. Extrae únicamente los nombres propios de PERSONAS (antropónimos) y LUGARES (topónimos) del versículo proporcionado e indica el tipo de cada uno.

Reglas (aplicar en este orden):
1) EXCLUIR las referencias reverenciales al Dios de Israel: Dios, Jehová, Yahvé, Adonai, Señor (cuando se refiere al Dios de Israel) y sus variantes. Sí EXTRAER los nombres de deidades o ídolos paganos (Baal, Baal-berit, Astarté, Moloc, Quemos, etc.) como "person".
2) EXCLUIR sustantivos genéricos, conceptos y fenómenos naturales: cielo, tierra, mar, sol, luna, día, noche, luz, viento, fuego, río, monte (genérico), pueblo, hombres, mujer, hijo, nación.
3) EXCLUIR todos los gentilicios: israelitas, judíos, egipcios, babilonios, caldeos, galileos, samaritanos, filisteos, cananeos, amonitas, moabitas, edomitas, asirios, persas, griegos, romanos, hebreos, levitas, etc.
4) ACEPTAR lugares concretos como "place": Jerusalén, Belén, Nazaret, Galilea, Egipto.
5) ACEPTAR nombres personales como "person", quitando títulos y apodos: 'Rey David' -> 'David', 'Profeta Isaías' -> 'Isaías', 'San Pablo' -> 'Pablo', 'Juan el Bautista' -> 'Juan', 'Jesús de Nazaret' -> 'Jesús'.
6) SEPARAR nombres compuestos: 'Simón Pedro' -> [{"name": "Simón", "type": "person"}, {"name": "Pedro", "type": "person"}].
7) En relaciones patronímicas ('Agur hijo de Jaqué') extraer ambos como personas.
8) No extraer palabras en mayúscula que no sean nombres propios.

Formato de salida:
- Devuelve SOLO un objeto JSON con la clave "names", cuyo valor es una lista de objetos {"name": string, "type": "person" | "place"}.
- Ejemplo: {"names": [{"name": "David", "type": "person"}, {"name": "Jerusalén", "type": "place"}]}
- Si no hay nombres, devuelve {"names": []}.
- No añadas texto fuera del JSON.

Notas:
- Conserva los acentos y la forma en que el nombre aparece en el texto.
- Elimina duplicados dentro del mismo versículo.
- Si se proporciona el versículo anterior, úsalo solo para decidir si un nombre es persona o lugar; extrae nombres ÚNICAMENTE del versículo actual.
- En genealogías ("X engendró a Y") los nombres son personas aunque terminen en "-im" (Ludim, Anamim, Lehabim, Naftuhim, Patrusim, Casluhim, Caftorim).
- Un gentilicio describe a los habitantes de un lugar ("los egipcios dijeron"); un patriarca que da origen a un pueblo es una persona.`

// contextHeader introduces the reference-only preceding unit.
const contextHeader = "CONTEXTO (versículo anterior, solo para referencia - NO extraer nombres de aquí):"

// buildSystemPrompt appends the preceding-unit section when context is present.
func buildSystemPrompt(base, precedingContext string) string {
	base = strings.TrimRight(base, "\n ")
	if strings.TrimSpace(precedingContext) == "" {
		return base
	}
	return fmt.Sprintf("%s\n\n%s\n%q", base, contextHeader, precedingContext)
}
