package store

// Collections is the fixed set of collection names known to the store, in
// canonical order. The set cannot grow at runtime.
var Collections = []string{
	"moradores",
	"avisos",
	"reservas",
	"ocorrencias",
	"usuarios",
	"empresas",
	"permissoes",
	"visitantes",
	"reunioes",
	"agendamentos",
	"atas",
	"eventos",
	"patrimonio",
	"prestadores",
	"funcionarios",
	"funcoes",
	"grupos",
	"unidades",
	"documentos",
	"quadro-avisos",
	"orcamento-compras",
	"orcamento-servicos",
	AuditCollection,
}

// AuditCollection is the reserved collection receiving one entry per mutation.
const AuditCollection = "auditoria"

// seedAdminHash is a bcrypt hash of "password", matching the default admin
// credential of the original dataset.
const seedAdminHash = "$2a$10$92IXUNpkjO0rOQ5byMi.Ye4oKoEa3Ro9llC/.og/at2.uheWG/igi"

// defaultData builds the built-in seed dataset used when no data file exists.
// Every known collection is present; only the core ones carry records.
func defaultData(now string) map[string][]Record {
	data := make(map[string][]Record, len(Collections))
	for _, name := range Collections {
		data[name] = []Record{}
	}

	data["moradores"] = []Record{{
		"id":          1,
		"nome":        "João Silva",
		"apartamento": "101",
		"bloco":       "A",
		"telefone":    "(11) 99999-9999",
		"email":       "joao@email.com",
		"dataEntrada": "2023-01-15",
		"ativo":       true,
		"createdAt":   now,
		"updatedAt":   now,
	}}

	data["avisos"] = []Record{{
		"id":         1,
		"titulo":     "Manutenção do Elevador",
		"conteudo":   "O elevador do bloco A passará por manutenção preventiva no dia 15/12/2023.",
		"dataInicio": "2023-12-10",
		"dataFim":    "2023-12-20",
		"prioridade": "alta",
		"ativo":      true,
		"createdAt":  now,
		"updatedAt":  now,
	}}

	data["reservas"] = []Record{{
		"id":            1,
		"moradorId":     1,
		"espaco":        "Salão de Festas",
		"dataReserva":   "2023-12-25",
		"horarioInicio": "19:00",
		"horarioFim":    "23:00",
		"status":        "confirmada",
		"observacoes":   "Festa de Natal",
		"createdAt":     now,
		"updatedAt":     now,
	}}

	data["ocorrencias"] = []Record{{
		"id":             1,
		"moradorId":      1,
		"tipo":           "manutencao",
		"descricao":      "Vazamento no banheiro",
		"prioridade":     "alta",
		"status":         "aberta",
		"dataOcorrencia": "2023-12-01",
		"dataResolucao":  nil,
		"createdAt":      now,
		"updatedAt":      now,
	}}

	data["usuarios"] = []Record{{
		"id":        1,
		"nome":      "Administrador",
		"email":     "admin@evemind.com",
		"senha":     seedAdminHash,
		"tipo":      "admin",
		"ativo":     true,
		"createdAt": now,
		"updatedAt": now,
	}}

	data["empresas"] = []Record{{
		"id":        1,
		"nome":      "Empresa de Limpeza ABC",
		"cnpj":      "12.345.678/0001-90",
		"telefone":  "(11) 3333-4444",
		"email":     "contato@empresaabc.com",
		"servico":   "Limpeza",
		"ativo":     true,
		"createdAt": now,
		"updatedAt": now,
	}}

	data["permissoes"] = []Record{{
		"id":        1,
		"nome":      "Gerenciar Moradores",
		"codigo":    "MORADORES_CRUD",
		"descricao": "Permite criar, editar e excluir moradores",
		"ativo":     true,
		"createdAt": now,
		"updatedAt": now,
	}}

	data[AuditCollection] = []Record{{
		"id":           1,
		"usuarioId":    1,
		"acao":         ActionCreate,
		"tabela":       "moradores",
		"registroId":   1,
		"dadosAntigos": nil,
		"dadosNovos":   `{"nome":"João Silva","apartamento":"101"}`,
		"ip":           "127.0.0.1",
		"userAgent":    "Sistema Interno",
		"createdAt":    now,
	}}

	return data
}
