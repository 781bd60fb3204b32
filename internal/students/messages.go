package students

import "escola/internal/notify"

const titleError = "Erro"

var (
	msgListFailed   = notify.Failure(titleError, "Não foi possível carregar os alunos")
	msgCreated      = notify.Success("Aluno adicionado", "Aluno cadastrado com sucesso")
	msgCreateFailed = notify.Failure(titleError, "Não foi possível adicionar o aluno")
	msgUpdated      = notify.Success("Aluno atualizado", "Dados do aluno atualizados com sucesso")
	msgUpdateFailed = notify.Failure(titleError, "Não foi possível atualizar o aluno")
	msgToggleFailed = notify.Failure(titleError, "Não foi possível atualizar o status")
	msgExported     = notify.Success("Exportação concluída", "Dados exportados para CSV com sucesso")
	msgDemoData     = notify.Failure("Aviso", "Usando dados de demonstração. Configure o banco de dados para persistir as alterações.")
)

func msgToggled(status PaymentStatus) notify.Notification {
	return notify.Success("Status atualizado", "Status alterado para "+string(status))
}

func msgInvalid(err *ValidationError) notify.Notification {
	return notify.Failure("Dados inválidos", err.First())
}
